package service

import (
	"math"
	"sync"

	"stock-insight/internal/dto"
)

// WatchlistService keeps the mutable in-memory views: the user watchlist,
// the daily picks list and the latest market pulse. Deep-scan results are
// pushed into every copy of a symbol through SyncStock, which also
// recomputes the affected sector averages.
type WatchlistService interface {
	Watchlist() []dto.StockSummary
	Add(summary dto.StockSummary)
	Remove(symbol string)
	SetDailyPicks(picks []dto.StockSummary)
	DailyPicks() []dto.StockSummary
	SetPulse(pulse dto.MarketPulse)
	Pulse() (dto.MarketPulse, bool)
	SyncStock(update dto.StockSummary)
	IsDetailed(symbol string) bool
}

type watchlistService struct {
	mu         sync.RWMutex
	watchlist  []dto.StockSummary
	dailyPicks []dto.StockSummary
	pulse      dto.MarketPulse
	hasPulse   bool
}

func NewWatchlistService() WatchlistService {
	return &watchlistService{}
}

func (s *watchlistService) Watchlist() []dto.StockSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySummaries(s.watchlist)
}

func (s *watchlistService) Add(summary dto.StockSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.watchlist {
		if existing.ID == summary.ID {
			return
		}
	}
	s.watchlist = append(s.watchlist, summary)
}

func (s *watchlistService) Remove(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.watchlist[:0]
	for _, existing := range s.watchlist {
		if existing.ID != symbol {
			kept = append(kept, existing)
		}
	}
	s.watchlist = kept
}

func (s *watchlistService) SetDailyPicks(picks []dto.StockSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyPicks = copySummaries(picks)
}

func (s *watchlistService) DailyPicks() []dto.StockSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySummaries(s.dailyPicks)
}

// SetPulse replaces the stored pulse but keeps upgraded rows: a symbol
// already deep-scanned stays detailed rather than regressing to its
// pulse-mode shallow reading.
func (s *watchlistService) SetPulse(pulse dto.MarketPulse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasPulse {
		for i, sector := range pulse.Sectors {
			for j, stock := range sector.Stocks {
				if prev, ok := s.findDetailedLocked(stock.ID); ok {
					pulse.Sectors[i].Stocks[j] = prev
				}
			}
			pulse.Sectors[i].Score = averageScore(pulse.Sectors[i].Stocks)
		}
	}

	s.pulse = pulse
	s.hasPulse = true
}

func (s *watchlistService) Pulse() (dto.MarketPulse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pulse, s.hasPulse
}

// SyncStock applies one upgraded reading to every copy of the symbol and
// recomputes the averages of any sector holding it.
func (s *watchlistService) SyncStock(update dto.StockSummary) {
	update.IsDetailed = true

	s.mu.Lock()
	defer s.mu.Unlock()

	applySummary(s.watchlist, update)
	applySummary(s.dailyPicks, update)

	if !s.hasPulse {
		return
	}
	for i := range s.pulse.Sectors {
		if applySummary(s.pulse.Sectors[i].Stocks, update) {
			s.pulse.Sectors[i].Score = averageScore(s.pulse.Sectors[i].Stocks)
		}
	}
}

func (s *watchlistService) IsDetailed(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.findDetailedLocked(symbol)
	return ok
}

func (s *watchlistService) findDetailedLocked(symbol string) (dto.StockSummary, bool) {
	for _, stock := range s.watchlist {
		if stock.ID == symbol && stock.IsDetailed {
			return stock, true
		}
	}
	if s.hasPulse {
		for _, sector := range s.pulse.Sectors {
			for _, stock := range sector.Stocks {
				if stock.ID == symbol && stock.IsDetailed {
					return stock, true
				}
			}
		}
	}
	return dto.StockSummary{}, false
}

func applySummary(list []dto.StockSummary, update dto.StockSummary) bool {
	applied := false
	for i := range list {
		if list[i].ID == update.ID {
			name := list[i].Name
			list[i] = update
			if update.Name == "" {
				list[i].Name = name
			}
			applied = true
		}
	}
	return applied
}

func averageScore(stocks []dto.StockSummary) int {
	if len(stocks) == 0 {
		return 50
	}
	sum := 0
	for _, stock := range stocks {
		sum += stock.Score
	}
	return int(math.Round(float64(sum) / float64(len(stocks))))
}

func copySummaries(src []dto.StockSummary) []dto.StockSummary {
	out := make([]dto.StockSummary, len(src))
	copy(out, src)
	return out
}

package utils

import (
	"log"
	"math"
)

// GoSafe runs the given function in a new goroutine and recovers from any panic.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Panic Recovered] %v", r)
			}
		}()
		fn()
	}()
}

func ToPointer[T any](value T) *T {
	return &value
}

// ContainsString checks if a slice of strings contains a specific string.
func ContainsString(slice []string, str string) bool {
	for _, item := range slice {
		if item == str {
			return true
		}
	}
	return false
}

// RoundToTaiwanTick snaps a price to the TWSE tick table.
func RoundToTaiwanTick(price float64) float64 {
	tick := taiwanTick(price)
	return math.Round(price/tick) * tick
}

func taiwanTick(price float64) float64 {
	switch {
	case price < 10:
		return 0.01
	case price < 50:
		return 0.05
	case price < 100:
		return 0.1
	case price < 500:
		return 0.5
	case price < 1000:
		return 1
	default:
		return 5
	}
}

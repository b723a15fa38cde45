package features

import (
    "math"
)

// DefaultRSIWindow is the classic 14-bar lookback.
const DefaultRSIWindow = 14

// RSI computes the relative strength index over closes using simple rolling
// means of gains and losses. The result has one value per close; positions
// before the first full window are 50. Returns nil if len(closes) < window.
func RSI(closes []float64, window int) []float64 {
    if window < 2 || len(closes) < window {
        return nil
    }

    gains := make([]float64, len(closes))
    losses := make([]float64, len(closes))
    for i := 1; i < len(closes); i++ {
        d := closes[i] - closes[i-1]
        if d > 0 {
            gains[i] = d
        } else if d < 0 {
            losses[i] = -d
        }
    }

    out := make([]float64, len(closes))
    var sumG, sumL float64
    for i := range closes {
        sumG += gains[i]
        sumL += losses[i]
        if i >= window {
            sumG -= gains[i-window]
            sumL -= losses[i-window]
        }
        if i < window-1 {
            out[i] = 50
            continue
        }
        out[i] = rsiValue(sumG/float64(window), sumL/float64(window))
    }
    return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
    // rolling sums can drift slightly below zero
    if avgLoss < 1e-12 {
        avgLoss = 0
    }
    if avgGain < 1e-12 {
        avgGain = 0
    }
    switch {
    case avgGain == 0 && avgLoss == 0:
        return 50
    case avgLoss == 0:
        return 100
    }
    v := 100 - 100/(1+avgGain/avgLoss)
    if math.IsNaN(v) {
        return 50
    }
    return v
}

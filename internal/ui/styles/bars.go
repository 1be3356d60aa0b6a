// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "strings"

// Bar characters for dashboard charts.
var (
	BarFull    = "█"
	BarEmpty   = "░"
	BarPartial = []string{"▏", "▎", "▍", "▌", "▋", "▊", "▉"}
)

// SparkLevels draws a value on an eight-step column.
var SparkLevels = []rune(" ▁▂▃▄▅▆▇█")

// RenderBar returns a bar width cells wide, filled to value/limit. The filled
// and empty parts are returned separately so they can be styled apart.
func RenderBar(width int, value, limit float64) (filled, empty string) {
	if width <= 0 {
		return "", ""
	}
	frac := 0.0
	if limit > 0 {
		frac = value / limit
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	cells := float64(width) * frac
	full := int(cells)
	partial := int((cells - float64(full)) * float64(len(BarPartial)+1))

	var sb strings.Builder
	sb.WriteString(strings.Repeat(BarFull, full))
	used := full
	if used < width && partial > 0 {
		sb.WriteString(BarPartial[partial-1])
		used++
	}
	return sb.String(), strings.Repeat(BarEmpty, width-used)
}

// Sparkline renders one rune per value, scaled to the largest value.
func Sparkline(values []int) string {
	peak := 0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	out := make([]rune, len(values))
	top := len(SparkLevels) - 1
	for i, v := range values {
		switch {
		case peak == 0 || v <= 0:
			out[i] = SparkLevels[0]
		default:
			level := (v*top + peak - 1) / peak
			out[i] = SparkLevels[level]
		}
	}
	return string(out)
}

package ui

import "strings"

var levels = []rune(" ▁▂▃▄▅▆▇█")

const eighths = 8

// sparkline draws the newest width values as rows of block glyphs, top row first. Values are scaled to
// ceiling; older values that do not fit are dropped and missing ones are left blank.
func sparkline(values []float64, width, height int, ceiling float64) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	heights := make([]int, width)
	offset := width - len(values)
	for i, value := range values {
		heights[offset+i] = scale(value, ceiling, height*eighths)
	}

	rows := make([]string, height)
	for row := 0; row < height; row++ {
		floor := (height - 1 - row) * eighths

		var line strings.Builder
		for _, h := range heights {
			level := h - floor
			if level < 0 {
				level = 0
			} else if level > eighths {
				level = eighths
			}
			line.WriteRune(levels[level])
		}
		rows[row] = line.String()
	}
	return rows
}

// scale maps value onto 0..steps. Any positive value gets at least one step.
func scale(value, ceiling float64, steps int) int {
	if value <= 0 || ceiling <= 0 {
		return 0
	}

	scaled := int(value / ceiling * float64(steps))
	if scaled < 1 {
		return 1
	} else if scaled > steps {
		return steps
	}
	return scaled
}

func maxOf(values []float64) float64 {
	ceiling := 0.0
	for _, value := range values {
		if value > ceiling {
			ceiling = value
		}
	}
	return ceiling
}

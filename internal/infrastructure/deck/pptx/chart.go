package pptx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

const maxBars = 12

type bar struct {
	label string
	value float64
}

// chartBars reads the shapes models commonly emit for chart data:
// {"labels":[...],"values":[...]}, {"labels":[...],"datasets":[{"data":[...]}]},
// an ordered {"label": number} object, [{"label":..,"value":..}] or a bare number array.
func chartBars(data json.RawMessage) []bar {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	var series struct {
		Labels   []string  `json:"labels"`
		Values   []float64 `json:"values"`
		Datasets []struct {
			Data []float64 `json:"data"`
		} `json:"datasets"`
	}
	if trimmed[0] == '{' && json.Unmarshal(trimmed, &series) == nil && len(series.Labels) > 0 {
		values := series.Values
		if len(values) == 0 && len(series.Datasets) > 0 {
			values = series.Datasets[0].Data
		}
		if len(values) > 0 {
			return zipBars(series.Labels, values)
		}
	}

	if trimmed[0] == '{' {
		return orderedObjectBars(trimmed)
	}

	var numbers []float64
	if json.Unmarshal(trimmed, &numbers) == nil {
		return zipBars(nil, numbers)
	}

	var points []map[string]any
	if json.Unmarshal(trimmed, &points) == nil {
		out := make([]bar, 0, len(points))
		for i, point := range points {
			value, ok := numberField(point, "value", "y", "count", "amount")
			if !ok {
				continue
			}
			label := stringField(point, "label", "name", "category", "x")
			if label == "" {
				label = strconv.Itoa(i + 1)
			}
			out = append(out, bar{label: label, value: value})
		}
		return limitBars(out)
	}
	return nil
}

func zipBars(labels []string, values []float64) []bar {
	out := make([]bar, 0, len(values))
	for i, v := range values {
		label := strconv.Itoa(i + 1)
		if i < len(labels) && strings.TrimSpace(labels[i]) != "" {
			label = labels[i]
		}
		out = append(out, bar{label: label, value: v})
	}
	return limitBars(out)
}

// orderedObjectBars keeps key order, which a map decode would lose.
func orderedObjectBars(data []byte) []bar {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var out []bar
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return limitBars(out)
		}
		key, _ := tok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return limitBars(out)
		}
		if n, ok := value.(float64); ok {
			out = append(out, bar{label: key, value: n})
		}
	}
	return limitBars(out)
}

func limitBars(in []bar) []bar {
	if len(in) > maxBars {
		return in[:maxBars]
	}
	return in
}

func numberField(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case string:
			if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func chartBody(tree *shapeTree, chart domain.ChartContent, c domain.BrandColors) {
	bars := chartBars(chart.Data)
	if len(bars) == 0 {
		caption := strings.TrimSpace(chart.ChartType)
		if caption == "" {
			caption = "Chart"
		}
		tree.addText("Chart Placeholder", rect{marginX, bodyY, contentWidth, bodyHeight},
			textStyle{size: 2400, color: c.Secondary, align: "ctr", anchor: "ctr"},
			[]paragraph{{text: caption + " (no data)"}})
		return
	}

	maxValue := 0.0
	for _, b := range bars {
		if b.value > maxValue {
			maxValue = b.value
		}
	}

	const (
		labelHeight = 457200
		valueHeight = 365760
	)
	plotTop := bodyY + valueHeight
	plotHeight := bodyHeight - labelHeight - valueHeight
	slot := contentWidth / len(bars)
	barWidth := slot * 3 / 5
	fills := []string{c.Primary, c.Secondary, c.Accent}

	for i, b := range bars {
		height := 0
		if maxValue > 0 && b.value > 0 {
			height = int(float64(plotHeight) * b.value / maxValue)
		}
		x := marginX + i*slot + (slot-barWidth)/2
		top := plotTop + plotHeight - height
		if height > 0 {
			tree.addRect(fmt.Sprintf("Bar %d", i+1), rect{x, top, barWidth, height}, fills[i%len(fills)])
		}
		tree.addText(fmt.Sprintf("Value %d", i+1), rect{marginX + i*slot, top - valueHeight, slot, valueHeight},
			textStyle{size: 1400, bold: true, color: c.Text, align: "ctr", anchor: "b"},
			[]paragraph{{text: formatValue(b.value)}})
		tree.addText(fmt.Sprintf("Label %d", i+1), rect{marginX + i*slot, plotTop + plotHeight, slot, labelHeight},
			textStyle{size: 1200, color: c.Text, align: "ctr"},
			[]paragraph{{text: b.label}})
	}
	tree.addRect("Axis", rect{marginX, plotTop + plotHeight, contentWidth, 12700}, c.Text)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

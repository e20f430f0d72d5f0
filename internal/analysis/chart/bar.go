package chart

import (
	"encoding/json"
	"sync"
	"sync/atomic"
)

// BarConfig is a Chart.js-compatible bar chart configuration.
type BarConfig struct {
	Type    string     `json:"type"`
	Data    BarData    `json:"data"`
	Options BarOptions `json:"options"`
}

type BarData struct {
	Labels   []string     `json:"labels"`
	Datasets []BarDataset `json:"datasets"`
}

type BarDataset struct {
	Label                string `json:"label"`
	BackgroundColor      string `json:"backgroundColor"`
	BorderColor          string `json:"borderColor"`
	BorderWidth          int    `json:"borderWidth"`
	HoverBackgroundColor string `json:"hoverBackgroundColor"`
	HoverBorderColor     string `json:"hoverBorderColor"`
	Data                 []int  `json:"data"`
}

type BarOptions struct {
	Scales map[string]Scale `json:"scales"`
}

type Scale struct {
	Type string `json:"type,omitempty"`
}

// BarRenderer builds BarConfig charts and counts the ones not yet
// destroyed.
type BarRenderer struct {
	live     atomic.Int64
	rendered atomic.Int64
	// OnRender, when set, receives every new configuration.
	OnRender func(BarConfig)
}

// NewBarConfig returns the configuration for ds.
func NewBarConfig(ds Dataset) BarConfig {
	return BarConfig{
		Type: "bar",
		Data: BarData{
			Labels: ds.Labels,
			Datasets: []BarDataset{{
				Label:                DatasetLabel,
				BackgroundColor:      "rgba(75, 192, 192, 0.6)",
				BorderColor:          "rgba(75, 192, 192, 1)",
				BorderWidth:          1,
				HoverBackgroundColor: "rgba(75, 192, 192, 0.8)",
				HoverBorderColor:     "rgba(75, 192, 192, 1)",
				Data:                 ds.Values,
			}},
		},
		Options: BarOptions{
			Scales: map[string]Scale{
				"x": {Type: "category"},
				"y": {},
			},
		},
	}
}

func (r *BarRenderer) Render(ds Dataset) (Chart, error) {
	cfg := NewBarConfig(ds)
	r.live.Add(1)
	r.rendered.Add(1)
	if r.OnRender != nil {
		r.OnRender(cfg)
	}
	return &BarChart{Config: cfg, owner: r}, nil
}

// Live returns the number of charts rendered and not yet destroyed.
func (r *BarRenderer) Live() int64 { return r.live.Load() }

// Rendered returns the total number of charts ever rendered.
func (r *BarRenderer) Rendered() int64 { return r.rendered.Load() }

// BarChart is one rendered configuration.
type BarChart struct {
	Config BarConfig
	owner  *BarRenderer
	once   sync.Once
}

// Destroy releases the chart; further calls are no-ops.
func (c *BarChart) Destroy() {
	c.once.Do(func() {
		c.owner.live.Add(-1)
	})
}

// MarshalJSON emits the Chart.js configuration.
func (c *BarChart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Config)
}

package dto

type TooltipResponse struct {
	Layer int      `json:"layer"`
	Index int      `json:"index"`
	Title string   `json:"title"`
	Lines []string `json:"lines,omitempty"`
	Label string   `json:"label"`
}

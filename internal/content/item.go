package content

// Kind tells what type of media a content item presents.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Item is a single playable round: a piece of media and the ground truth of
// whether it is authentic or machine-generated. The JSON shape is shared by
// the bundled manifest, the package archive manifest and the admin API.
type Item struct {
	ID             string   `json:"id" validate:"required"`
	Kind           Kind     `json:"kind" validate:"required,oneof=image video"`
	MediaRef       string   `json:"mediaRef"`
	Authentic      bool     `json:"isAuthentic"`
	Title          string   `json:"title"`
	Explanation    string   `json:"explanation"`
	DetectionHints []string `json:"detectionHints,omitempty"`
	Category       string   `json:"category"`
	ShortHint      string   `json:"shortHint,omitempty"`
	GeneratorLabel string   `json:"generatorLabel,omitempty"`
	UserSupplied   bool     `json:"isUserSupplied"`
}

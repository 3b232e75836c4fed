package emotion

// Provenance records how an asset came to exist.
type Provenance string

const (
	ProvenanceSeeded    Provenance = "seeded"
	ProvenanceGenerated Provenance = "ai-generated"
)

// Asset is one avatar image bound to an emotion description. Assets are
// immutable once registered.
type Asset struct {
	ID          string
	Description string
	ImageRef    string
	Provenance  Provenance
}

// Resolution is the outcome of resolving an emotion against the cache.
// Deferred means no acceptable cached asset exists and the caller must
// schedule asynchronous synthesis.
type Resolution struct {
	ImageRef string
	Deferred bool
}

// Metadata keys stored alongside each indexed asset.
const (
	metaImagePath = "image_path"
	metaSource    = "source"
)

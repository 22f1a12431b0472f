package common

// Variant codes.
const (
	// SrcVariant is the canonical source-of-truth variant code.
	SrcVariant = "src"
	// UnknownVariant marks an asset whose text nodes are being switched
	// and do not represent any single variant yet.
	UnknownVariant = ""
)

// Per-node plugin data keys. These names are part of the persisted document
// state and must never change.
const (
	DataStyles      = "styles"
	DataVariants    = "variants"
	DataVariantCode = "variant_code"
	DataComments    = "comments"
	DataIsReady     = "is_ready"
	DataWasModified = "was_modified"
	DataID          = "id"
)

// Process-wide persistent storage keys.
const (
	StorageAssetsFingerprint      = "assets_fingerprint"
	StorageAssetFingerprintPrefix = "asset_fingerprint:"
)

// Ellipsis is appended to trimmed text by the fitter.
const Ellipsis = "…"

package models

// Listing is a property row as it appears in the source snapshot, with every
// categorical column in display form.
type Listing struct {
	Region    string  `json:"region"`
	Locality  string  `json:"locality"`
	Type      string  `json:"type"`
	BHK       int     `json:"bhk"`
	Status    string  `json:"status"`
	Age       string  `json:"age"`
	Area      float64 `json:"area"`
	Price     float64 `json:"price"`
	PriceUnit string  `json:"price_unit"`
}

// Property is a corpus record with its categorical columns stored as codes.
type Property struct {
	Region    int
	Locality  int
	Type      int
	BHK       int
	Status    int
	Age       int
	Area      float64
	Price     float64
	PriceUnit string
}

// Recommendation is one representative listing for a bedroom count.
type Recommendation struct {
	BHK       int     `json:"bhk"`
	Price     float64 `json:"price"`
	PriceUnit string  `json:"price_unit"`
	Location  string  `json:"location"`
	Locality  string  `json:"locality"`
	Status    string  `json:"status"`
	Age       string  `json:"age"`
	Area      float64 `json:"area"`
}

// RegionProfile describes the listings of a region as a whole.
type RegionProfile struct {
	Location         string   `json:"location"`
	ListingCount     int      `json:"listing_count"`
	TopLocalities    []string `json:"top_localities"`
	MostCommonStatus string   `json:"most_common_status"`
	MostCommonAge    string   `json:"most_common_age"`
}

// PriceEvaluation compares a claimed price with the estimator's prediction.
// Both prices are in lakhs.
type PriceEvaluation struct {
	PredictedPrice float64 `json:"predicted_price"`
	UserPrice      float64 `json:"user_price"`
	PriceVariation float64 `json:"price_variation"`
}

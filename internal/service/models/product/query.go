package product

// QueryProductsModel represents filter parameters for querying the catalog.
type QueryProductsModel struct {
	Ids       []string `json:"ids,omitempty"`
	FarmerIds []string `json:"farmerIds,omitempty"`
	Category  string   `json:"category,omitempty"`
	Search    string   `json:"search,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Offset    int      `json:"offset,omitempty"`
}

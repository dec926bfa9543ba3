package order

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids      []string `json:"ids,omitempty"`
	BuyerIds []string `json:"buyerIds,omitempty"`
	Statuses []Status `json:"statuses,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Offset   int      `json:"offset,omitempty"`
}

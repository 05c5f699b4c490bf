package entity

// ReceiptHeader holds the store header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ReceiptItem is a single printed line. Amounts are preformatted.
type ReceiptItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// Receipt is the printable rendering of a sale. It is built at print time and
// never stored.
type Receipt struct {
	Header     ReceiptHeader `json:"header"`
	InvoiceNo  string        `json:"invoice_no"`
	Date       string        `json:"date"`
	Time       string        `json:"time"`
	Customer   string        `json:"customer"`
	Items      []ReceiptItem `json:"items"`
	SubTotal   string        `json:"sub_total"`
	Discount   string        `json:"discount,omitempty"`
	Labour     string        `json:"labour,omitempty"`
	Freight    string        `json:"freight,omitempty"`
	GrandTotal string        `json:"grand_total"`
	Footer     string        `json:"footer,omitempty"`
}

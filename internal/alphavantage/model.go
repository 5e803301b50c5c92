package alphavantage

// globalQuoteResponse is the GLOBAL_QUOTE payload. Alpha Vantage reports every value
// as a string. Rate-limit and error responses carry Note, Information or
// ErrorMessage instead of a quote.
type globalQuoteResponse struct {
	GlobalQuote  globalQuote `json:"Global Quote"`
	Note         string      `json:"Note"`
	Information  string      `json:"Information"`
	ErrorMessage string      `json:"Error Message"`
}

type globalQuote struct {
	Symbol           string `json:"01. symbol"`
	Open             string `json:"02. open"`
	High             string `json:"03. high"`
	Low              string `json:"04. low"`
	Price            string `json:"05. price"`
	Volume           string `json:"06. volume"`
	LatestTradingDay string `json:"07. latest trading day"`
	PreviousClose    string `json:"08. previous close"`
	Change           string `json:"09. change"`
	ChangePercent    string `json:"10. change percent"`
}

// dailySeriesResponse is the TIME_SERIES_DAILY payload, keyed by "2006-01-02" dates.
type dailySeriesResponse struct {
	TimeSeries   map[string]dailyPrice `json:"Time Series (Daily)"`
	Note         string                `json:"Note"`
	Information  string                `json:"Information"`
	ErrorMessage string                `json:"Error Message"`
}

type dailyPrice struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

func providerMessage(note, information, errorMessage string) string {
	switch {
	case errorMessage != "":
		return errorMessage
	case note != "":
		return note
	default:
		return information
	}
}

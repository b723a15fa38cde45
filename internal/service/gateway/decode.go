package gateway

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"StonkPulse/internal/domain/models"
	"StonkPulse/pkg/util"
)

type priceBody struct {
	Symbol string   `json:"symbol"`
	Price  *float64 `json:"price"`
	Error  string   `json:"error"`
}

func decodePrice(symbol string, b priceBody, at time.Time) (models.Quote, error) {
	if b.Error != "" {
		return models.Quote{}, emptyErr("upstream: %s", b.Error)
	}
	if b.Price == nil {
		return models.Quote{}, decodeErr("missing price")
	}
	p := *b.Price
	// negative settlements are real (CL=F, April 2020); zero means no quote
	if math.IsNaN(p) || math.IsInf(p, 0) || p == 0 {
		return models.Quote{}, emptyErr("unusable price %v", p)
	}
	return models.Quote{Symbol: symbol, Price: p, State: models.StateAvailable, FetchedAt: at}, nil
}

// flexValue accepts a JSON string or number. Null, "", 0 and "N/A" count as absent.
type flexValue string

func (v *flexValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, "N/A") {
			s = ""
		}
		*v = flexValue(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		f, err := n.Float64()
		if err != nil {
			return err
		}
		if f == 0 {
			*v = ""
			return nil
		}
		*v = flexValue(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

type macroBody struct {
	DXY          flexValue `json:"dxy"`
	TenYearYield flexValue `json:"tenYearYield"`
	Inflation    flexValue `json:"inflation"`
	FedRate      flexValue `json:"fedRate"`
	Error        string    `json:"error"`
}

func decodeMacro(b macroBody) (models.MacroReading, error) {
	if b.Error != "" {
		return models.MacroReading{}, emptyErr("upstream: %s", b.Error)
	}
	r := models.MacroReading{
		DXY:          string(b.DXY),
		TenYearYield: string(b.TenYearYield),
		Inflation:    string(b.Inflation),
		FedRate:      string(b.FedRate),
	}
	if r == (models.MacroReading{}) {
		return r, emptyErr("no macro fields")
	}
	return r, nil
}

type sentimentBody struct {
	FearGreedIndex *json.Number `json:"fearGreedIndex"`
	Error          string       `json:"error"`
}

func decodeSentiment(b sentimentBody) (models.SentimentReading, error) {
	if b.Error != "" {
		return models.SentimentReading{}, emptyErr("upstream: %s", b.Error)
	}
	if b.FearGreedIndex == nil {
		return models.SentimentReading{}, emptyErr("missing fearGreedIndex")
	}
	f, err := b.FearGreedIndex.Float64()
	if err != nil {
		return models.SentimentReading{}, decodeErr("fearGreedIndex: %v", err)
	}
	if f < 0 || f > 100 {
		return models.SentimentReading{}, decodeErr("fearGreedIndex %v out of range", f)
	}
	return models.SentimentReading{Score: int(math.Floor(f))}, nil
}

type relayBody struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Items   *[]relayItem `json:"items"`
}

type relayItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	PubDate string `json:"pubDate"`
}

func decodeRelay(b relayBody) ([]models.NewsItem, error) {
	if b.Status == "error" {
		return nil, emptyErr("relay: %s", b.Message)
	}
	if b.Items == nil {
		return nil, decodeErr("missing items")
	}
	out := make([]models.NewsItem, 0, len(*b.Items))
	for _, it := range *b.Items {
		out = append(out, newsItem(it.Title, it.Link, it.PubDate))
	}
	if len(out) == 0 {
		return nil, emptyErr("no news items")
	}
	return out, nil
}

type rssBody struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

func decodeRSS(b rssBody) ([]models.NewsItem, error) {
	out := make([]models.NewsItem, 0, len(b.Channel.Items))
	for _, it := range b.Channel.Items {
		out = append(out, newsItem(it.Title, it.Link, it.PubDate))
	}
	if len(out) == 0 {
		return nil, emptyErr("no news items")
	}
	return out, nil
}

func newsItem(title, link, pubDate string) models.NewsItem {
	return models.NewsItem{
		Title:       strings.TrimSpace(title),
		Link:        strings.TrimSpace(link),
		PublishedAt: util.ParseTimeDefault(pubDate, time.Time{}),
	}
}

type chartBody struct {
	Chart *struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
	Error string `json:"error"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

func decodeSeries(symbol string, b chartBody) (models.Series, error) {
	if b.Error != "" {
		return models.Series{}, decodeErr("upstream: %s", b.Error)
	}
	if b.Chart == nil {
		return models.Series{}, decodeErr("missing chart")
	}
	if b.Chart.Error != nil {
		return models.Series{}, decodeErr("chart: %s %s", b.Chart.Error.Code, b.Chart.Error.Description)
	}
	if len(b.Chart.Result) == 0 {
		return models.Series{}, emptyErr("no chart result")
	}
	// first result is authoritative
	res := b.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return models.Series{}, decodeErr("missing quote indicator")
	}
	closes := res.Indicators.Quote[0].Close
	if len(closes) != len(res.Timestamp) {
		return models.Series{}, decodeErr("timestamp/close length mismatch %d != %d", len(res.Timestamp), len(closes))
	}

	points := make([]models.Point, 0, len(closes))
	for i, c := range closes {
		if c == nil || math.IsNaN(*c) {
			continue
		}
		points = append(points, models.Point{Time: res.Timestamp[i], Value: *c})
	}
	points = normalizePoints(points)
	if len(points) == 0 {
		return models.Series{}, emptyErr("no usable points")
	}
	return models.Series{Symbol: symbol, Points: points}, nil
}

// normalizePoints sorts by time and keeps the last value for a repeated timestamp.
func normalizePoints(points []models.Point) []models.Point {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time < points[j].Time })
	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Time == p.Time {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

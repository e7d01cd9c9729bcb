package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/coreyshath-a11y/aeo-app/internal/logger"
)

// cruxEndpoint is the Chrome UX Report queryRecord API.
const cruxEndpoint = "https://chromeuxreport.googleapis.com/v1/records:queryRecord"

// CruxData holds the 75th-percentile field metrics for a site's mobile
// traffic. Available is false when the API has no record for the origin
// or no API key is configured.
type CruxData struct {
	Available bool
	// LCPMillis is largest contentful paint, p75, in milliseconds.
	LCPMillis float64
	// CLS is cumulative layout shift, p75.
	CLS float64
	// INPMillis is interaction to next paint, p75, in milliseconds.
	INPMillis float64
}

type cruxRequest struct {
	Origin     string `json:"origin"`
	FormFactor string `json:"formFactor"`
}

type cruxResponse struct {
	Record struct {
		Metrics map[string]struct {
			Percentiles struct {
				P75 cruxNumber `json:"p75"`
			} `json:"percentiles"`
		} `json:"metrics"`
	} `json:"record"`
}

// cruxNumber decodes a p75 value, which the API encodes as a JSON number
// for millisecond metrics but as a quoted string for CLS.
type cruxNumber float64

func (n *cruxNumber) UnmarshalJSON(data []byte) error {
	trimmed := bytes.Trim(data, `"`)
	value, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		return err
	}
	*n = cruxNumber(value)
	return nil
}

// CruxClient queries the Chrome UX Report API for real-user performance
// data. It never returns an error; missing records, API failures, and a
// blank key all yield Available=false, which scorers treat as neutral.
type CruxClient struct {
	client   *http.Client
	endpoint string
	apiKey   string
	log      logger.Interface
}

// NewCruxClient creates a CrUX client. An empty apiKey disables queries.
func NewCruxClient(timeout time.Duration, apiKey string, log logger.Interface) *CruxClient {
	return &CruxClient{
		client:   &http.Client{Timeout: timeout},
		endpoint: cruxEndpoint,
		apiKey:   apiKey,
		log:      log,
	}
}

// Query fetches the p75 mobile metrics for origin.
func (c *CruxClient) Query(ctx context.Context, origin string) CruxData {
	if c.apiKey == "" {
		return CruxData{}
	}

	payload, err := json.Marshal(cruxRequest{Origin: origin, FormFactor: "PHONE"})
	if err != nil {
		return CruxData{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return CruxData{}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug("crux query failed", "origin", origin, "error", err)
		return CruxData{}
	}
	defer resp.Body.Close()

	// 404 means CrUX has no record for this origin. Not an error.
	if resp.StatusCode != http.StatusOK {
		return CruxData{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return CruxData{}
	}

	var parsed cruxResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.log.Debug("crux response malformed", "origin", origin, "error", err)
		return CruxData{}
	}
	if len(parsed.Record.Metrics) == 0 {
		return CruxData{}
	}

	data := CruxData{Available: true}
	if m, ok := parsed.Record.Metrics["largest_contentful_paint"]; ok {
		data.LCPMillis = float64(m.Percentiles.P75)
	}
	if m, ok := parsed.Record.Metrics["cumulative_layout_shift"]; ok {
		data.CLS = float64(m.Percentiles.P75)
	}
	if m, ok := parsed.Record.Metrics["interaction_to_next_paint"]; ok {
		data.INPMillis = float64(m.Percentiles.P75)
	}

	return data
}

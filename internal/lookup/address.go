package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var errPostcodeNotFound = errors.New("postcode not found")

const (
	getAddressBaseURL = "https://api.getaddress.io"
	postcodesBaseURL  = "https://api.postcodes.io"
)

// AddressClient resolves UK postcodes to candidate addresses. With a
// getAddress.io key it returns full house-level addresses; without one (or
// when getAddress.io fails) it falls back to postcodes.io, which only knows
// district-level data.
type AddressClient struct {
	HTTPClient     *http.Client
	APIKey         string
	GetAddressBase string
	PostcodesBase  string
}

func NewAddressClient(apiKey string) *AddressClient {
	return &AddressClient{
		HTTPClient:     &http.Client{Timeout: 10 * time.Second},
		APIKey:         strings.TrimSpace(apiKey),
		GetAddressBase: getAddressBaseURL,
		PostcodesBase:  postcodesBaseURL,
	}
}

// Address is one candidate address for a postcode.
type Address struct {
	Line1    string `json:"line1,omitempty"`
	Line2    string `json:"line2,omitempty"`
	Town     string `json:"town,omitempty"`
	County   string `json:"county,omitempty"`
	Postcode string `json:"postcode"`
}

// ByPostcode returns the candidate addresses for a UK postcode. An empty
// slice means the postcode resolved to nothing; an error means both sources
// were unreachable or rejected the postcode.
func (c *AddressClient) ByPostcode(ctx context.Context, postcode string) ([]Address, error) {
	postcode = strings.ToUpper(strings.Join(strings.Fields(postcode), ""))
	if postcode == "" {
		return []Address{}, nil
	}

	if c.APIKey != "" {
		addrs, err := c.fromGetAddress(ctx, postcode)
		if err == nil {
			return addrs, nil
		}
		// fall through to the free district-level source
	}
	return c.fromPostcodes(ctx, postcode)
}

func (c *AddressClient) fromGetAddress(ctx context.Context, postcode string) ([]Address, error) {
	u := fmt.Sprintf("%s/find/%s?api-key=%s&expand=true",
		c.GetAddressBase, url.PathEscape(postcode), url.QueryEscape(c.APIKey))

	var apiResp struct {
		Postcode  string `json:"postcode"`
		Addresses []struct {
			Line1      string `json:"line_1"`
			Line2      string `json:"line_2"`
			TownOrCity string `json:"town_or_city"`
			County     string `json:"county"`
		} `json:"addresses"`
	}
	if err := c.get(ctx, u, &apiResp); err != nil {
		if errors.Is(err, errPostcodeNotFound) {
			return []Address{}, nil
		}
		return nil, err
	}

	out := make([]Address, 0, len(apiResp.Addresses))
	for _, a := range apiResp.Addresses {
		out = append(out, Address{
			Line1:    a.Line1,
			Line2:    a.Line2,
			Town:     a.TownOrCity,
			County:   a.County,
			Postcode: apiResp.Postcode,
		})
	}
	return out, nil
}

func (c *AddressClient) fromPostcodes(ctx context.Context, postcode string) ([]Address, error) {
	u := fmt.Sprintf("%s/postcodes/%s", c.PostcodesBase, url.PathEscape(postcode))

	var apiResp struct {
		Result struct {
			Postcode      string `json:"postcode"`
			AdminDistrict string `json:"admin_district"`
			AdminCounty   string `json:"admin_county"`
		} `json:"result"`
	}
	if err := c.get(ctx, u, &apiResp); err != nil {
		if errors.Is(err, errPostcodeNotFound) {
			return []Address{}, nil
		}
		return nil, err
	}

	return []Address{{
		Town:     apiResp.Result.AdminDistrict,
		County:   apiResp.Result.AdminCounty,
		Postcode: apiResp.Result.Postcode,
	}}, nil
}

func (c *AddressClient) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build address request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("address lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errPostcodeNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("address lookup responded %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode address response: %w", err)
	}
	return nil
}

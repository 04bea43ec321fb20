package emergency

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/domain/providers"
	apperrors "github.com/zatekoja/erhospitalmatch/pkg/errors"
	"github.com/zatekoja/erhospitalmatch/pkg/retry"
	"golang.org/x/time/rate"
)

const (
	liveCapacityPath   = "/getEmrrmRltmUsefulSckbdInfoInqire"
	staticRegistryPath = "/getEgytBassInfoInqire"
	resultCodeNormal   = "00"
	maxPages           = 10
)

// errResultCode marks an API-level rejection. Retrying it does not help.
var errResultCode = errors.New("emergency api returned a non-normal result code")

// Config holds the settings of the public emergency medical data API
type Config struct {
	BaseURL      string
	ServiceKey   string
	Timeout      time.Duration
	RateLimitRPS float64
	PageSize     int
	Retry        retry.Config
}

// Client talks to the national emergency medical data API (data.go.kr).
// It serves both live capacity and the static hospital registry.
type Client struct {
	baseURL    string
	serviceKey string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
	retryCfg   retry.Config
}

// NewClient creates an API client. All calls share one rate limiter.
func NewClient(cfg Config) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewClientWithHTTP allows overriding the HTTP client (used for tests).
func NewClientWithHTTP(cfg Config, httpClient *http.Client) *Client {
	limit := rate.Inf
	burst := 1
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
		burst = int(cfg.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	retryCfg := cfg.Retry
	if retryCfg.MaxAttempts == 0 {
		retryCfg = retry.ExternalAPIConfig()
	}
	retryCfg.ShouldRetry = isTransient

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		pageSize:   pageSize,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		retryCfg:   retryCfg,
	}
}

// FetchLive returns every live capacity record of a district, following pagination
func (c *Client) FetchLive(ctx context.Context, city, district string) ([]entities.HospitalRecord, error) {
	var records []entities.HospitalRecord
	for page := 1; page <= maxPages; page++ {
		params := url.Values{}
		params.Set("STAGE1", city)
		params.Set("STAGE2", district)
		params.Set("pageNo", strconv.Itoa(page))
		params.Set("numOfRows", strconv.Itoa(c.pageSize))

		resp, err := c.get(ctx, liveCapacityPath, params)
		if err != nil {
			return nil, err
		}

		for _, item := range resp.Body.Items {
			records = append(records, entities.HospitalRecordFromFields(item.fields()))
		}

		if len(resp.Body.Items) < c.pageSize || len(records) >= resp.Body.TotalCount {
			break
		}
	}
	return records, nil
}

// LookupStatic returns the registry profile of one hospital
func (c *Client) LookupStatic(ctx context.Context, hpid string) (*entities.StaticHospitalProfile, error) {
	params := url.Values{}
	params.Set("HPID", hpid)
	params.Set("pageNo", "1")
	params.Set("numOfRows", "1")

	resp, err := c.get(ctx, staticRegistryPath, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Body.Items) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("hospital %s is not in the registry", hpid))
	}

	return staticProfileFromFields(resp.Body.Items[0].fields()), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*apiResponse, error) {
	params.Set("serviceKey", c.serviceKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var parsed *apiResponse
	err := retry.DoWithLog(ctx, c.retryCfg, "emergency-api",
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return apperrors.NewExternalError("rate limiter wait aborted", err)
			}
			resp, err := c.do(ctx, reqURL)
			if err != nil {
				return err
			}
			parsed = resp
			return nil
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Str("path", path).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("Emergency API call failed, retrying")
		},
	)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeExternal) {
			return nil, err
		}
		return nil, apperrors.NewExternalError("emergency api call failed", err)
	}
	return parsed, nil
}

func (c *Client) do(ctx context.Context, reqURL string) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build emergency api request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("emergency api request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, apperrors.NewExternalError(fmt.Sprintf("emergency api returned status %d", resp.StatusCode), nil)
	}

	var parsed apiResponse
	if err := xml.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewExternalError("failed to decode emergency api response", err)
	}
	if code := strings.TrimSpace(parsed.Header.ResultCode); code != resultCodeNormal {
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("emergency api error %s: %s", code, strings.TrimSpace(parsed.Header.ResultMsg)),
			errResultCode,
		)
	}
	return &parsed, nil
}

// isTransient retries transport and server failures, not API rejections or bad requests
func isTransient(err error) bool {
	if errors.Is(err, errResultCode) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return apperrors.IsType(err, apperrors.ErrorTypeExternal)
}

func staticProfileFromFields(fields map[string]string) *entities.StaticHospitalProfile {
	return &entities.StaticHospitalProfile{
		HPID:         fields["hpid"],
		Name:         fields["dutyname"],
		Address:      fields["dutyaddr"],
		Phone:        fields["dutytel1"],
		TotalERBeds:  entities.SafeInt(fields["hperyn"]),
		TotalICUBeds: entities.SafeInt(fields["hpicuyn"]),
		TotalBeds:    entities.SafeInt(fields["hpbdn"]),
	}
}

type apiResponse struct {
	XMLName xml.Name `xml:"response"`
	Header  struct {
		ResultCode string `xml:"resultCode"`
		ResultMsg  string `xml:"resultMsg"`
	} `xml:"header"`
	Body struct {
		Items      []apiItem `xml:"items>item"`
		NumOfRows  int       `xml:"numOfRows"`
		PageNo     int       `xml:"pageNo"`
		TotalCount int       `xml:"totalCount"`
	} `xml:"body"`
}

// apiItem keeps every child element, since the field set differs per endpoint
type apiItem struct {
	Fields []apiField `xml:",any"`
}

type apiField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func (i apiItem) fields() map[string]string {
	out := make(map[string]string, len(i.Fields))
	for _, f := range i.Fields {
		out[strings.ToLower(f.XMLName.Local)] = strings.TrimSpace(f.Value)
	}
	return out
}

var (
	_ providers.EmergencyDataProvider    = (*Client)(nil)
	_ providers.HospitalRegistryProvider = (*Client)(nil)
)

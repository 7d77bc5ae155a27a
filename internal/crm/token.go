package crm

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"maqua-crm/internal/common/config"
	apperrors "maqua-crm/internal/common/errors"
	"maqua-crm/internal/common/logger"
)

const tokenPath = "/open-auth/selfAppAuth/base/v1/getAccessToken"

// TokenProvider supplies gateway access tokens.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenService fetches and caches YonBIP access tokens. The token is
// refreshed once its remaining lifetime drops under the configured
// margin; concurrent callers share one refresh.
type TokenService struct {
	cfg        config.CRMConfig
	httpClient *http.Client
	log        logger.Logger
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenService builds a token service for the configured tenant.
func NewTokenService(cfg config.CRMConfig, log logger.Logger) *TokenService {
	return &TokenService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
		now:        time.Now,
	}
}

// Token returns a valid access token, fetching a fresh one when the
// cached token is missing or expiring.
func (s *TokenService) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiresAt) {
		return s.token, nil
	}

	token, expire, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}
	margin := s.cfg.TokenMargin
	if margin <= 0 {
		margin = time.Minute
	}
	lifetime := expire - margin
	if lifetime < time.Minute {
		lifetime = time.Minute
	}
	s.token = token
	s.expiresAt = s.now().Add(lifetime)
	if s.log != nil {
		s.log.Debug("access token refreshed", map[string]interface{}{
			"expiresAt": s.expiresAt.Format(time.RFC3339),
		})
	}
	return token, nil
}

func (s *TokenService) fetch(ctx context.Context) (string, time.Duration, error) {
	timestamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	query := url.Values{}
	query.Set("appKey", s.cfg.AppKey)
	query.Set("timestamp", timestamp)
	query.Set("signature", signRequest(s.cfg.AppKey, timestamp, s.cfg.AppSecret))

	endpoint := s.cfg.AuthURL + tokenPath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", 0, apperrors.NewInternalError("building token request").WithCause(err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", 0, apperrors.NewRemoteCallError("fetching access token").WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, apperrors.NewRemoteCallError("reading token response").WithCause(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", 0, apperrors.NewRemoteCallError(
			fmt.Sprintf("token endpoint returned HTTP %d", resp.StatusCode),
		).WithMetadata("body", string(body))
	}

	var envelope struct {
		Code string `json:"code"`
		Data struct {
			AccessToken string      `json:"access_token"`
			Expire      json.Number `json:"expire"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", 0, apperrors.NewRemoteCallError("decoding token response").WithCause(err)
	}
	if envelope.Code != "00000" {
		return "", 0, apperrors.NewRemoteRejectedError("token request rejected", string(body))
	}
	if envelope.Data.AccessToken == "" {
		return "", 0, apperrors.NewRemoteRejectedError("token missing in response", string(body))
	}

	expireSeconds := int64(7200)
	if n, err := envelope.Data.Expire.Int64(); err == nil && n > 0 {
		expireSeconds = n
	}
	return envelope.Data.AccessToken, time.Duration(expireSeconds) * time.Second, nil
}

// signRequest builds the HMAC-SHA256 signature over the appKey and
// timestamp parameters as the open-auth endpoint requires.
func signRequest(appKey, timestamp, secret string) string {
	message := "appKey" + appKey + "timestamp" + timestamp
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

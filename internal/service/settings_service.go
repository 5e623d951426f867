package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/domain"
	"github.com/damoang/angple-wiki/internal/repository"
	"github.com/damoang/angple-wiki/pkg/cache"
	"github.com/damoang/angple-wiki/pkg/logger"
	"github.com/damoang/angple-wiki/pkg/mailer"
	"github.com/damoang/angple-wiki/pkg/sealer"
	"github.com/damoang/angple-wiki/pkg/webhook"
)

// Setting keys
const (
	SettingApprovalWorkflow = "approval_workflow_enabled"
	SettingDefaultSortOrder = "default_sort_order"
	SettingShowSortDropdown = "show_sort_dropdown"
	SettingSMTPHost         = "smtp_host"
	SettingSMTPPort         = "smtp_port"
	SettingSMTPSecure       = "smtp_secure"
	SettingSMTPUser         = "smtp_user"
	SettingSMTPPass         = "smtp_pass"
	SettingSMTPFrom         = "smtp_from"
	SettingWebhookURL       = "webhook_url"
	SettingWebhookHeaders   = "webhook_headers"
)

type valueKind int

const (
	kindText valueKind = iota
	kindBool
	kindSortOrder
	kindPort
	kindURL
	kindHeaders
)

type settingDef struct {
	kind         valueKind
	public       bool
	alwaysSealed bool
	fallback     *string
}

func strPtr(s string) *string { return &s }

var knownSettings = map[string]settingDef{
	SettingApprovalWorkflow: {kind: kindBool, fallback: strPtr("false")},
	SettingDefaultSortOrder: {kind: kindSortOrder, public: true, fallback: strPtr(string(domain.SortAlphabetical))},
	SettingShowSortDropdown: {kind: kindBool, public: true, fallback: strPtr("true")},
	SettingSMTPHost:         {kind: kindText},
	SettingSMTPPort:         {kind: kindPort, fallback: strPtr("587")},
	SettingSMTPSecure:       {kind: kindBool, fallback: strPtr("false")},
	SettingSMTPUser:         {kind: kindText},
	SettingSMTPPass:         {kind: kindText, alwaysSealed: true},
	SettingSMTPFrom:         {kind: kindText},
	SettingWebhookURL:       {kind: kindURL},
	SettingWebhookHeaders:   {kind: kindHeaders},
}

var settingKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,99}$`)

// WebhookPoster sends a JSON payload to a webhook URL
type WebhookPoster interface {
	Post(ctx context.Context, rawURL string, headers map[string]string, payload interface{}) (*webhook.Result, error)
}

// MailSender verifies SMTP settings and delivers mail
type MailSender interface {
	Verify(ctx context.Context, cfg mailer.Config) error
	Send(ctx context.Context, cfg mailer.Config, msg mailer.Message) error
}

type smtpSender struct{}

func (smtpSender) Verify(ctx context.Context, cfg mailer.Config) error { return mailer.Verify(ctx, cfg) }
func (smtpSender) Send(ctx context.Context, cfg mailer.Config, msg mailer.Message) error {
	return mailer.Send(ctx, cfg, msg)
}

// SettingsService manages system settings
type SettingsService struct {
	repo    repository.SettingRepository
	sealer  *sealer.Sealer
	cache   cache.Service
	webhook WebhookPoster
	mail    MailSender
	timeout time.Duration
}

// NewSettingsService creates a new SettingsService. A nil cache disables caching of public settings.
func NewSettingsService(repo repository.SettingRepository, s *sealer.Sealer, c cache.Service) *SettingsService {
	if c == nil {
		c = cache.NewService(nil)
	}
	return &SettingsService{
		repo:    repo,
		sealer:  s,
		cache:   c,
		webhook: webhook.NewClient(webhook.DefaultTimeout),
		mail:    smtpSender{},
		timeout: mailer.DefaultTimeout,
	}
}

// SetWebhookPoster replaces the webhook client
func (s *SettingsService) SetWebhookPoster(p WebhookPoster) {
	s.webhook = p
}

// SetMailSender replaces the SMTP sender
func (s *SettingsService) SetMailSender(m MailSender) {
	s.mail = m
}

// SetTimeout sets the bound for outbound SMTP and webhook calls
func (s *SettingsService) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// GetAll returns every stored setting with encrypted values opened
func (s *SettingsService) GetAll(ctx context.Context) ([]*domain.SettingView, error) {
	rows, err := s.repo.List()
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	views := make([]*domain.SettingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, s.view(row))
	}
	return views, nil
}

// Get returns one stored setting
func (s *SettingsService) Get(ctx context.Context, key string) (*domain.SettingView, error) {
	row, err := s.repo.Find(key)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, common.ErrSettingNotFound
		}
		return nil, fmt.Errorf("find setting %s: %w", key, err)
	}
	return s.view(row), nil
}

// Upsert validates and stores a setting value
func (s *SettingsService) Upsert(ctx context.Context, key string, req domain.UpsertSettingRequest, by uint64) (*domain.SettingView, error) {
	if !settingKeyPattern.MatchString(key) {
		return nil, common.ErrInvalidSettingKey
	}

	def, known := knownSettings[key]
	value := req.Value
	if value != nil {
		v := strings.TrimSpace(*value)
		if known {
			if err := validateSettingValue(def.kind, v); err != nil {
				return nil, err
			}
		}
		value = &v
	}

	sealed := req.Encrypted || def.alwaysSealed
	stored := value
	if sealed && value != nil && *value != "" {
		ct, err := s.sealer.Seal(*value)
		if err != nil {
			if errors.Is(err, sealer.ErrNoKey) {
				return nil, common.ErrEncryptionUnavailable
			}
			return nil, fmt.Errorf("seal setting %s: %w", key, err)
		}
		stored = &ct
	}

	row := &domain.SystemSetting{
		Key:       key,
		Value:     stored,
		Encrypted: sealed,
		UpdatedAt: time.Now(),
		UpdatedBy: &by,
	}
	if err := s.repo.Upsert(row); err != nil {
		return nil, fmt.Errorf("upsert setting %s: %w", key, err)
	}
	s.invalidate(ctx, key)

	return &domain.SettingView{
		Key:       key,
		Value:     value,
		Encrypted: sealed,
		UpdatedAt: row.UpdatedAt,
		UpdatedBy: row.UpdatedBy,
	}, nil
}

// Delete removes a stored setting; its default applies again afterwards
func (s *SettingsService) Delete(ctx context.Context, key string) error {
	n, err := s.repo.Delete(key)
	if err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	if n == 0 {
		return common.ErrSettingNotFound
	}
	s.invalidate(ctx, key)
	return nil
}

// GetPublic returns an allow-listed setting, falling back to its default
func (s *SettingsService) GetPublic(ctx context.Context, key string) (*domain.PublicSetting, error) {
	def, ok := knownSettings[key]
	if !ok || !def.public {
		return nil, common.ErrSettingNotPublic
	}

	cacheKey := cache.PrefixPublicSetting + key
	var cached domain.PublicSetting
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	value, err := s.Value(ctx, key)
	if err != nil {
		return nil, err
	}
	result := &domain.PublicSetting{Key: key, Value: value}
	if err := s.cache.Set(ctx, cacheKey, result, cache.TTLSetting); err != nil {
		logger.GetLogger().Warn().Err(err).Str("key", key).Msg("cache public setting")
	}
	return result, nil
}

// Value returns the effective plaintext value of key: the stored value, else its default, else "".
// An encrypted value that cannot be opened reads as "".
func (s *SettingsService) Value(ctx context.Context, key string) (string, error) {
	row, err := s.repo.Find(key)
	if err != nil && !repository.IsNotFound(err) {
		return "", fmt.Errorf("find setting %s: %w", key, err)
	}
	if row != nil {
		if v := s.view(row).Value; v != nil {
			return *v, nil
		}
		if row.Encrypted {
			return "", nil
		}
	}
	if def, ok := knownSettings[key]; ok && def.fallback != nil {
		return *def.fallback, nil
	}
	return "", nil
}

// SMTPConfig assembles the stored SMTP settings
func (s *SettingsService) SMTPConfig(ctx context.Context) (mailer.Config, error) {
	var cfg mailer.Config
	vals := make(map[string]string)
	for _, k := range []string{SettingSMTPHost, SettingSMTPPort, SettingSMTPSecure, SettingSMTPUser, SettingSMTPPass, SettingSMTPFrom} {
		v, err := s.Value(ctx, k)
		if err != nil {
			return cfg, err
		}
		vals[k] = v
	}
	cfg.Host = vals[SettingSMTPHost]
	cfg.Port, _ = strconv.Atoi(vals[SettingSMTPPort])
	cfg.Secure = vals[SettingSMTPSecure] == "true"
	cfg.User = vals[SettingSMTPUser]
	cfg.Pass = vals[SettingSMTPPass]
	cfg.From = vals[SettingSMTPFrom]
	return cfg, nil
}

// WebhookTarget returns the stored webhook URL and headers
func (s *SettingsService) WebhookTarget(ctx context.Context) (string, map[string]string, error) {
	url, err := s.Value(ctx, SettingWebhookURL)
	if err != nil {
		return "", nil, err
	}
	raw, err := s.Value(ctx, SettingWebhookHeaders)
	if err != nil {
		return "", nil, err
	}
	headers := map[string]string{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &headers); err != nil {
			logger.GetLogger().Warn().Err(err).Msg("stored webhook_headers is not a JSON object")
		}
	}
	return url, headers, nil
}

// TestSMTPResult reports a successful SMTP check
type TestSMTPResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TestSMTP connects to the SMTP server using req, filling blank fields from stored settings
func (s *SettingsService) TestSMTP(ctx context.Context, req domain.TestSMTPRequest) (*TestSMTPResult, error) {
	cfg, err := s.SMTPConfig(ctx)
	if err != nil {
		return nil, err
	}
	if req.Host != "" {
		cfg.Host = strings.TrimSpace(req.Host)
	}
	if req.Port != 0 {
		cfg.Port = req.Port
	}
	if req.Secure != nil {
		cfg.Secure = *req.Secure
	}
	if req.User != "" {
		cfg.User = req.User
	}
	if req.Pass != "" {
		cfg.Pass = req.Pass
	}
	if req.From != "" {
		cfg.From = req.From
	}
	if err := cfg.Validate(); err != nil {
		return nil, common.NewValidationError(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.mail.Verify(ctx, cfg); err != nil {
		return nil, common.NewExternalError("SMTP connection failed", err)
	}
	return &TestSMTPResult{Success: true, Message: "SMTP connection successful"}, nil
}

// TestWebhookResult reports a successful test delivery
type TestWebhookResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// TestWebhook posts a test payload to req.URL, or the stored URL when blank
func (s *SettingsService) TestWebhook(ctx context.Context, req domain.TestWebhookRequest) (*TestWebhookResult, error) {
	url, headers, err := s.WebhookTarget(ctx)
	if err != nil {
		return nil, err
	}
	if req.URL != "" {
		url = strings.TrimSpace(req.URL)
	}
	if req.Headers != nil {
		headers = req.Headers
	}
	if url == "" {
		return nil, common.ErrWebhookURLRequired
	}

	payload := map[string]interface{}{
		"test":      true,
		"message":   "This is a test webhook from angple-wiki",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(ctx, webhook.DefaultTimeout)
	defer cancel()
	res, err := s.webhook.Post(ctx, url, headers, payload)
	if err != nil {
		if errors.Is(err, webhook.ErrBlockedTarget) {
			return nil, common.ErrWebhookURLBlocked
		}
		return nil, common.NewExternalError("Webhook test failed", err)
	}
	return &TestWebhookResult{Success: true, Message: "Webhook test successful", Status: res.StatusCode}, nil
}

func (s *SettingsService) view(row *domain.SystemSetting) *domain.SettingView {
	v := &domain.SettingView{
		Key:       row.Key,
		Value:     row.Value,
		Encrypted: row.Encrypted,
		UpdatedAt: row.UpdatedAt,
		UpdatedBy: row.UpdatedBy,
	}
	if row.Encrypted && row.Value != nil && *row.Value != "" {
		plain, err := s.sealer.Open(*row.Value)
		if err != nil {
			logger.GetLogger().Warn().Err(err).Str("key", row.Key).Msg("open encrypted setting")
			v.Value = nil
		} else {
			v.Value = &plain
		}
	}
	return v
}

func (s *SettingsService) invalidate(ctx context.Context, key string) {
	if def, ok := knownSettings[key]; !ok || !def.public {
		return
	}
	if err := s.cache.Delete(ctx, cache.PrefixPublicSetting+key); err != nil {
		logger.GetLogger().Warn().Err(err).Str("key", key).Msg("invalidate public setting")
	}
}

func validateSettingValue(kind valueKind, v string) error {
	switch kind {
	case kindBool:
		if v != "true" && v != "false" {
			return common.NewValidationError("value must be \"true\" or \"false\"")
		}
	case kindSortOrder:
		if !domain.SortOrder(v).Valid() {
			return common.ErrInvalidSort
		}
	case kindPort:
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > 65535 {
			return common.NewValidationError("port must be between 1 and 65535")
		}
	case kindURL:
		if v != "" && !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return common.ErrWebhookURLBlocked
		}
	case kindHeaders:
		if v == "" {
			return nil
		}
		var h map[string]string
		if err := json.Unmarshal([]byte(v), &h); err != nil {
			return common.NewValidationError("webhook_headers must be a JSON object of strings")
		}
	}
	return nil
}

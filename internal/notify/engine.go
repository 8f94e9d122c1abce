// Package notify holds the dispatch core: the engine that turns one
// content-update job into a bounded set of rendered, deduplicated email
// deliveries, plus the publisher that debounces update events into jobs.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/notifyhub/flagnotify/internal/domain"
	"github.com/notifyhub/flagnotify/internal/mailer"
	"github.com/notifyhub/flagnotify/internal/render"
	"github.com/notifyhub/flagnotify/internal/store"
)

// Skip reasons reported through the OnSkipped hook.
const (
	SkipAccessDenied = "access_denied"
	SkipEmptyRender  = "empty_render"
)

// Hooks carries the metric callbacks injected by main. Using a struct
// keeps the engine metrics-agnostic (nil fields become no-ops).
type Hooks struct {
	OnDelivered func()
	OnFailed    func()
	OnSkipped   func(reason string)
}

// Engine executes one dispatch run per job: snapshot configuration, load
// the item, and for every enabled applicable channel resolve recipients,
// batch them, resolve templates per locale group, render, deduplicate, and
// hand one message per surviving recipient to the mail transport.
//
// Error discipline: per-recipient conditions (delivery failure, denied
// access, empty render, missing email) are absorbed and logged — they
// never abort the batch or the run. Only systemic conditions (a store
// read failing) propagate, so the queue-level retry policy applies
// exactly when no delivery could be attempted at all.
type Engine struct {
	content   store.ContentStore
	subs      store.SubscriptionStore
	accounts  store.AccountStore
	settings  store.SettingsStore
	locales   store.LocaleStore
	renderer  render.Renderer
	mail      mailer.Mailer
	bodyClean *bluemonday.Policy
	siteName  string
	batchSize int
	logger    *zap.Logger
	hooks     Hooks
}

// DefaultBatchSize bounds how many full account records are materialized
// at once. This is the engine's only scalability control.
const DefaultBatchSize = 50

func NewEngine(
	content store.ContentStore,
	subs store.SubscriptionStore,
	accounts store.AccountStore,
	settings store.SettingsStore,
	locales store.LocaleStore,
	renderer render.Renderer,
	mail mailer.Mailer,
	siteName string,
	batchSize int,
	logger *zap.Logger,
	hooks Hooks,
) *Engine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if hooks.OnDelivered == nil {
		hooks.OnDelivered = func() {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func() {}
	}
	if hooks.OnSkipped == nil {
		hooks.OnSkipped = func(string) {}
	}
	return &Engine{
		content:   content,
		subs:      subs,
		accounts:  accounts,
		settings:  settings,
		locales:   locales,
		renderer:  renderer,
		mail:      mail,
		bodyClean: bluemonday.UGCPolicy(),
		siteName:  siteName,
		batchSize: batchSize,
		logger:    logger,
		hooks:     hooks,
	}
}

// Dispatch runs the full fan-out for one content item. A missing or
// unpublished item is a silent no-op, not an error. A non-nil return
// always means the run could not be attempted or completed as a whole.
func (e *Engine) Dispatch(ctx context.Context, itemID int64) error {
	log := e.logger.With(zap.Int64("item_id", itemID))

	settings, err := e.settings.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load run settings: %w", err)
	}

	if settings.DefaultSubject == "" || settings.DefaultBody == "" {
		log.Warn("global default templates missing, using built-in fallback pair")
		settings.DefaultSubject = domain.FallbackSubject
		settings.DefaultBody = domain.FallbackBody
	}

	item, err := e.content.LoadItem(ctx, itemID)
	if errors.Is(err, domain.ErrItemNotFound) {
		log.Debug("item not found, nothing to dispatch")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load item: %w", err)
	}
	if !item.Published {
		log.Debug("item not published, nothing to dispatch")
		return nil
	}

	dedup := NewDedupTracker()

	for _, ch := range settings.Channels {
		if !ch.Enabled || !ch.AppliesTo(item.Kind) {
			continue
		}
		if err := e.dispatchChannel(ctx, log, settings, item, ch, dedup); err != nil {
			return err
		}
	}
	return nil
}

// dispatchChannel fans out one channel: resolve bare subscriber IDs, then
// process them in fixed-size batches so at most batchSize full account
// records exist at a time.
func (e *Engine) dispatchChannel(
	ctx context.Context,
	log *zap.Logger,
	settings *domain.RunSettings,
	item *domain.ContentItem,
	ch domain.Channel,
	dedup *DedupTracker,
) error {
	log = log.With(zap.String("channel", ch.ID))

	ids, err := e.subs.FindSubscribers(ctx, ch.ID, item.ID)
	if err != nil {
		return fmt.Errorf("find subscribers for channel %s: %w", ch.ID, err)
	}
	if len(ids) == 0 {
		log.Debug("no subscribers for channel")
		return nil
	}

	batches := (len(ids) + e.batchSize - 1) / e.batchSize
	log.Debug("resolved channel recipients",
		zap.Int("count", len(ids)), zap.Int("batches", batches))

	for start := 0; start < len(ids); start += e.batchSize {
		end := min(start+e.batchSize, len(ids))
		if err := e.dispatchBatch(ctx, log, settings, item, ch, dedup, ids[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) dispatchBatch(
	ctx context.Context,
	log *zap.Logger,
	settings *domain.RunSettings,
	item *domain.ContentItem,
	ch domain.Channel,
	dedup *DedupTracker,
	ids []int64,
) error {
	accounts, err := e.accounts.LoadAccounts(ctx, ids)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}

	// Group by preferred locale so templates are resolved once per
	// locale group instead of once per recipient.
	byLocale := make(map[string][]domain.Account)
	for _, a := range accounts {
		if !a.Usable() {
			continue
		}
		if settings.PreventDuplicates && dedup.Seen(a.ID) {
			continue
		}
		byLocale[a.PreferredLocale] = append(byLocale[a.PreferredLocale], a)
	}

	for locale, group := range byLocale {
		subjectTpl, bodyTpl, err := e.resolveTemplates(ctx, settings, ch, locale)
		if err != nil {
			return err
		}
		for _, account := range group {
			if err := e.deliver(ctx, log, settings, item, ch, dedup, account, locale, subjectTpl, bodyTpl); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveTemplates fetches the locale-override levels for the channel and
// applies the precedence chain. One call per locale group per batch.
func (e *Engine) resolveTemplates(
	ctx context.Context,
	settings *domain.RunSettings,
	ch domain.Channel,
	locale string,
) (subject, body string, err error) {
	src := TemplateSource{
		ChannelSubject: ch.Subject,
		ChannelBody:    ch.Body,
		DefaultSubject: settings.DefaultSubject,
		DefaultBody:    settings.DefaultBody,
	}

	lookups := []struct {
		key  string
		dest **string
	}{
		{domain.ChannelSubjectKey(ch.ID), &src.LocaleChannelSubject},
		{domain.ChannelBodyKey(ch.ID), &src.LocaleChannelBody},
		{domain.KeyDefaultSubject, &src.LocaleDefaultSubject},
		{domain.KeyDefaultBody, &src.LocaleDefaultBody},
	}
	for _, l := range lookups {
		value, ok, err := e.locales.Get(ctx, locale, l.key)
		if err != nil {
			return "", "", fmt.Errorf("load locale override %s/%s: %w", locale, l.key, err)
		}
		if ok {
			v := value
			*l.dest = &v
		}
	}

	subject, body = Resolve(src)
	return subject, body, nil
}

// deliver handles one recipient end-to-end: permission check, render,
// sanitize, send. Returns an error only for systemic store failures.
func (e *Engine) deliver(
	ctx context.Context,
	log *zap.Logger,
	settings *domain.RunSettings,
	item *domain.ContentItem,
	ch domain.Channel,
	dedup *DedupTracker,
	account domain.Account,
	locale, subjectTpl, bodyTpl string,
) error {
	allowed, err := e.content.CanView(ctx, item.ID, account.ID)
	if err != nil {
		return fmt.Errorf("check view access: %w", err)
	}
	if !allowed {
		log.Debug("skipped recipient, access denied", zap.Int64("account_id", account.ID))
		e.hooks.OnSkipped(SkipAccessDenied)
		return nil
	}

	rc := render.Context{Item: item, Recipient: &account, SiteName: e.siteName}
	subject := sanitizeSubject(e.renderer.Render(subjectTpl, rc, locale))
	body := strings.TrimSpace(e.bodyClean.Sanitize(e.renderer.Render(bodyTpl, rc, locale)))

	if subject == "" || body == "" {
		log.Debug("skipped recipient, empty subject or body after rendering",
			zap.Int64("account_id", account.ID))
		e.hooks.OnSkipped(SkipEmptyRender)
		return nil
	}

	if !e.mail.Send(ctx, account.Email, locale, subject, body) {
		log.Error("delivery failed",
			zap.Int64("account_id", account.ID), zap.String("to", account.Email))
		e.hooks.OnFailed()
		return nil
	}

	if settings.PreventDuplicates {
		dedup.Mark(account.ID)
	}
	e.hooks.OnDelivered()

	if settings.DebugMode {
		log.Debug("notification sent",
			zap.Int64("account_id", account.ID),
			zap.String("to", account.Email),
			zap.String("locale", locale),
			zap.String("subject", subject),
			zap.String("body", body),
		)
	} else {
		log.Debug("notification sent",
			zap.Int64("account_id", account.ID), zap.String("locale", locale))
	}
	return nil
}

// sanitizeSubject trims the rendered subject and strips line breaks.
// Mandatory header-injection defense: a subject must never carry CR/LF
// into the mail transport.
func sanitizeSubject(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", "")
}

package cartsync

import (
	"context"
	"fmt"
	"time"

	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/nikolayk812/cartsync/internal/logger"
	"github.com/nikolayk812/cartsync/internal/metrics"
	"github.com/nikolayk812/cartsync/internal/port"
)

const (
	outcomeOK      = "ok"
	outcomePartial = "partial"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"

	resultMerged = "merged"
	resultAdded  = "added"
	resultFailed = "failed"
	resultSynced = "synced"
)

// Synchronizer moves cart contents between the guest cart and the account
// cart when the session changes. Lines are processed one at a time.
type Synchronizer struct {
	local   port.LocalCartStore
	remote  port.RemoteCartGateway
	session port.SessionProvider

	log      *logger.Logger
	metrics  *metrics.SyncMetrics
	badge    port.BadgeRefresher
	notifier port.Notifier

	retainFailedLines bool
}

type Option func(*Synchronizer)

func WithLogger(l *logger.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.SyncMetrics) Option {
	return func(s *Synchronizer) {
		s.metrics = m
	}
}

func WithBadge(b port.BadgeRefresher) Option {
	return func(s *Synchronizer) {
		s.badge = b
	}
}

func WithNotifier(n port.Notifier) Option {
	return func(s *Synchronizer) {
		s.notifier = n
	}
}

// WithRetainFailedLines keeps the lines that could not be merged in the guest
// cart instead of clearing it.
func WithRetainFailedLines(retain bool) Option {
	return func(s *Synchronizer) {
		s.retainFailedLines = retain
	}
}

func New(local port.LocalCartStore, remote port.RemoteCartGateway, session port.SessionProvider, opts ...Option) (*Synchronizer, error) {
	if local == nil {
		return nil, fmt.Errorf("local store is nil")
	}
	if remote == nil {
		return nil, fmt.Errorf("remote gateway is nil")
	}
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}

	s := &Synchronizer{
		local:   local,
		remote:  remote,
		session: session,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// MergeLocalIntoRemote adds the guest cart to the account cart. Quantities of
// products present on both sides are summed. A failing line is recorded in
// the summary and does not stop the others.
func (s *Synchronizer) MergeLocalIntoRemote(ctx context.Context) (domain.SyncSummary, error) {
	started := time.Now()
	summary := domain.SyncSummary{Direction: domain.DirectionMerge}
	ctx = s.log.WithDirection(ctx, string(domain.DirectionMerge))

	localCart, err := s.local.Get(ctx)
	if err != nil {
		s.finish(summary, outcomeFailed, started)
		return summary, fmt.Errorf("local.Get: %w", err)
	}
	if localCart.IsEmpty() {
		s.log.Debug(ctx, "guest cart is empty, nothing to merge")
		s.finish(summary, outcomeSkipped, started)
		return summary, nil
	}

	remoteCart, err := s.remote.Fetch(ctx)
	if err != nil {
		s.log.Warn(ctx, "fetch remote cart failed, guest cart kept", err)
		s.finish(summary, outcomeFailed, started)
		return summary, fmt.Errorf("remote.Fetch: %w", err)
	}

	// The remote copy is kept current so every line sums onto what the
	// service actually holds.
	var failed []domain.CartLine
	for _, line := range localCart.Compact().Lines {
		if existing, ok := remoteCart.Find(line.ProductID); ok {
			quantity := existing.Quantity + line.Quantity
			err = s.remote.UpdateLine(ctx, existing.RemoteLineID, quantity)
			if err == nil {
				remoteCart = remoteCart.SetQuantity(line.ProductID, quantity)
				summary.Merged++
				continue
			}
			summary.Errors = append(summary.Errors, domain.LineError{ProductID: line.ProductID, Op: "update", Err: err})
		} else {
			var added domain.CartLine
			added, err = s.remote.AddLine(ctx, line.ProductID, line.Quantity)
			if err == nil {
				remoteCart.Lines = append(remoteCart.Lines, added)
				summary.Added++
				continue
			}
			summary.Errors = append(summary.Errors, domain.LineError{ProductID: line.ProductID, Op: "add", Err: err})
		}

		s.log.Warn(s.log.WithField(ctx, "productId", line.ProductID), "merge line failed", err)
		failed = append(failed, line)
	}

	s.settleGuestCart(ctx, failed)

	if s.badge != nil {
		s.badge.Refresh(ctx)
	}
	if summary.Updated() > 0 && s.notifier != nil {
		s.notifier.Notify(ctx, summary.Message())
	}

	outcome := outcomeOK
	if len(summary.Errors) > 0 {
		outcome = outcomePartial
	}
	s.finish(summary, outcome, started)
	s.log.Info(ctx, summary.Message())

	return summary, nil
}

// settleGuestCart clears the guest cart after a merge, or keeps only the
// failed lines when configured to. Storage errors are logged only.
func (s *Synchronizer) settleGuestCart(ctx context.Context, failed []domain.CartLine) {
	if s.retainFailedLines && len(failed) > 0 {
		retained := domain.Cart{Scope: domain.ScopeLocal, Lines: failed}
		if err := s.local.Save(ctx, retained); err != nil {
			s.log.Warn(ctx, "keep failed lines in guest cart", err)
		}
		return
	}

	if err := s.local.Clear(ctx); err != nil {
		s.log.Warn(ctx, "clear guest cart", err)
	}
}

// MirrorRemoteIntoLocal replaces the guest cart with a snapshot of the account
// cart, typically right before the session ends.
func (s *Synchronizer) MirrorRemoteIntoLocal(ctx context.Context) (domain.SyncSummary, error) {
	started := time.Now()
	summary := domain.SyncSummary{Direction: domain.DirectionMirror}
	ctx = s.log.WithDirection(ctx, string(domain.DirectionMirror))

	if !s.session.IsAuthenticated() {
		s.finish(summary, outcomeSkipped, started)
		return summary, domain.ErrNotAuthenticated
	}

	remoteCart, err := s.remote.Fetch(ctx)
	if err != nil {
		s.log.Warn(ctx, "fetch remote cart failed, guest cart kept", err)
		s.finish(summary, outcomeFailed, started)
		return summary, fmt.Errorf("remote.Fetch: %w", err)
	}

	if err := s.local.Clear(ctx); err != nil {
		s.finish(summary, outcomeFailed, started)
		return summary, fmt.Errorf("local.Clear: %w", err)
	}

	snapshot := remoteCart.Snapshot()
	if !snapshot.IsEmpty() {
		if err := s.local.Save(ctx, snapshot); err != nil {
			s.finish(summary, outcomeFailed, started)
			return summary, fmt.Errorf("local.Save: %w", err)
		}
	}

	summary.Synced = len(snapshot.Lines)
	s.finish(summary, outcomeOK, started)
	s.log.Info(ctx, summary.Message())

	return summary, nil
}

func (s *Synchronizer) finish(summary domain.SyncSummary, outcome string, started time.Time) {
	direction := string(summary.Direction)

	s.metrics.ObserveRun(direction, outcome, time.Since(started))
	s.metrics.AddLines(direction, resultMerged, summary.Merged)
	s.metrics.AddLines(direction, resultAdded, summary.Added)
	s.metrics.AddLines(direction, resultFailed, len(summary.Errors))
	s.metrics.AddLines(direction, resultSynced, summary.Synced)
}

// Package usersync brings the user directory of the roster service in line
// with the Manegeplan member export.
//
// The roster service cannot update users in place through its import, so
// a sync deactivates every account and re-imports the ones that should be
// active. Accounts that were created by hand in the roster service are
// included in the upload so they come back as well.
package usersync

import (
	"bytes"
	"context"
	"inzetbooster/lib/roster"
	"inzetbooster/lib/telemetry"
	"inzetbooster/lib/textutil"
	"inzetbooster/lib/timezone"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("usersync")

// names at least this similar are reported as possible duplicates
const DuplicateThreshold = 0.95

type Remote interface {
	MakeAllUsersInactive(ctx context.Context) error
	ImportUsers(ctx context.Context, csv []byte) error
}

type Duplicate struct {
	Incoming   roster.Person
	Existing   roster.Person
	Similarity float64
}

type Plan struct {
	// everything that is imported after the bulk deactivation
	Upload []roster.Person

	Added       []roster.Person
	Removed     []roster.Person
	Reactivated []roster.Person
	Invalid     []roster.Person
	Duplicates  []Duplicate
}

// IsNoop is true when applying the plan would not change who is active.
func (p Plan) IsNoop() bool {
	return len(p.Added) == 0 && len(p.Removed) == 0
}

type Syncer struct {
	// id prefix of accounts created from Manegeplan, defaults to
	// roster.DefaultIDPrefix
	Prefix string
	Logger *slog.Logger
	// defaults to timezone.Today
	Today func() time.Time
}

func (s Syncer) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s Syncer) prefix() string {
	if s.Prefix == "" {
		return roster.DefaultIDPrefix
	}
	return s.Prefix
}

func (s Syncer) isActive(p roster.Person) bool {
	today := timezone.Today
	if s.Today != nil {
		today = s.Today
	}
	return p.InactiveFrom == nil || p.InactiveFrom.After(today())
}

func key(p roster.Person) string {
	if p.ID != "" {
		return "id:" + p.ID
	}
	return "email:" + textutil.NormalizeEmail(p.Email)
}

// Plan compares the roster users (as exported, inactive ones are ignored)
// with the persons read from a Manegeplan export.
func (s Syncer) Plan(existing, incoming []roster.Person) Plan {
	var plan Plan

	var active []roster.Person
	activeKeys := map[string]bool{}
	activeEmails := map[string]bool{}
	for _, p := range existing {
		if !s.isActive(p) {
			continue
		}
		active = append(active, p)
		activeKeys[key(p)] = true
		activeEmails[textutil.NormalizeEmail(p.Email)] = true
	}

	incomingKeys := map[string]bool{}
	for _, p := range incoming {
		if !p.IsValid() {
			plan.Invalid = append(plan.Invalid, p)
			continue
		}
		k := key(p)
		if incomingKeys[k] {
			s.logger().Warn("person listed twice in export, keeping the first", "id", p.ID, "email", p.Email)
			continue
		}
		incomingKeys[k] = true
		plan.Upload = append(plan.Upload, p)

		if activeKeys[k] {
			continue
		}
		plan.Added = append(plan.Added, p)
		if activeEmails[textutil.NormalizeEmail(p.Email)] {
			continue
		}
		if dup, ok := mostSimilar(p, active); ok {
			plan.Duplicates = append(plan.Duplicates, dup)
		}
	}

	for _, p := range active {
		if !p.IsManegeplanUser(s.prefix()) {
			plan.Reactivated = append(plan.Reactivated, p)
			plan.Upload = append(plan.Upload, p)
			continue
		}
		if !incomingKeys[key(p)] {
			plan.Removed = append(plan.Removed, p)
		}
	}

	return plan
}

func mostSimilar(p roster.Person, candidates []roster.Person) (Duplicate, bool) {
	best := Duplicate{Incoming: p}
	for _, c := range candidates {
		similarity := textutil.NameSimilarity(p.FullName(), c.FullName())
		if similarity > best.Similarity {
			best.Existing = c
			best.Similarity = similarity
		}
	}
	return best, best.Similarity >= DuplicateThreshold
}

// Apply deactivates every roster user and imports plan.Upload. Nothing
// is sent when the plan is a no-op.
func (s Syncer) Apply(ctx context.Context, remote Remote, plan Plan) error {
	ctx, span := tracer.Start(ctx, "usersync:Apply")
	defer span.End()

	logger := s.logger()
	if plan.IsNoop() {
		logger.InfoContext(ctx, "users are already in sync")
		return nil
	}
	span.SetAttributes(
		attribute.Int("added", len(plan.Added)),
		attribute.Int("removed", len(plan.Removed)),
		attribute.Int("upload", len(plan.Upload)),
	)

	var upload bytes.Buffer
	err := roster.WriteUpload(&upload, plan.Upload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize upload")
		return err
	}

	err = remote.MakeAllUsersInactive(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deactivate users")
		return err
	}
	err = remote.ImportUsers(ctx, upload.Bytes())
	if err != nil {
		// every account is inactive at this point, the operator has to
		// rerun the sync
		logger.ErrorContext(ctx, "import failed after deactivating all users", "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to import users")
		return err
	}

	logger.InfoContext(
		ctx, "users synced",
		"added", len(plan.Added),
		"removed", len(plan.Removed),
		"reactivated", len(plan.Reactivated),
	)
	return nil
}

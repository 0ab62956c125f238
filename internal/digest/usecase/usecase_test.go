package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/config"
	"github.com/campushq/forumdigest/internal/pkg/goerror"
	"github.com/campushq/forumdigest/internal/pkg/idempotency"
	"github.com/campushq/forumdigest/internal/pkg/instrument"
	"github.com/campushq/forumdigest/internal/pkg/jwt"
	"github.com/campushq/forumdigest/internal/pkg/mail"
	"github.com/campushq/forumdigest/internal/pkg/validator"
	"github.com/campushq/forumdigest/internal/shared/event"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

const testConfigYAML = `
modules:
  digest:
    cycle_concurrency: 4
    retry_delay: 1
    max_retries: 2
    window_grace: 5
platform:
  name: TestCampus
  site_url: https://campus.test
`

var testNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

var errDeliberate = errors.New("deliberate failure")

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqUID struct{ n atomic.Int64 }

func (u *seqUID) Generate() int64 { return u.n.Inc() }

type fakeJWT struct{}

func (fakeJWT) Generate(int64, string) (string, error) { return "signed-token", nil }

func (fakeJWT) Verify(string) (jwt.Claims, error) { return jwt.Claims{}, nil }

func authCtx(userID int64, email string) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID, UserEmail: email})
}

// passthroughIdem runs the callback once per key and reports duplicates
// the way the redis tracker does.
type passthroughIdem struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newPassthroughIdem() *passthroughIdem {
	return &passthroughIdem{seen: make(map[string]struct{})}
}

func (p *passthroughIdem) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}

func (p *passthroughIdem) MarkCompleted(context.Context, string, time.Duration) error { return nil }

func (p *passthroughIdem) MarkFailed(context.Context, string, time.Duration) error { return nil }

func (p *passthroughIdem) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	p.mu.Lock()
	if _, dup := p.seen[key]; dup {
		p.mu.Unlock()
		return idempotency.ErrAlreadyCompleted
	}
	p.seen[key] = struct{}{}
	p.mu.Unlock()

	return fn(ctx)
}

type fakeDB struct {
	mu sync.Mutex

	subscription      *entity.Subscription
	getErr            error
	alwaysSubs        []entity.Subscription
	dueSubs           []entity.Subscription
	activeDiscussions []entity.DiscussionActivity
	duePairs          []entity.DiscussionActivity
	createErr         error

	upserts []entity.UpsertSubscription
	records []entity.RecordActivity
	resets  []string
	touched [][]int64
	digests []entity.CreateDigest
	logs    []entity.UpdateDeliveryLog
	ensured []string
}

func (f *fakeDB) UpsertSubscription(_ context.Context, in entity.UpsertSubscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, in)
	return nil
}

func (f *fakeDB) GetSubscription(context.Context, int64, string) (*entity.Subscription, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.subscription, nil
}

func (f *fakeDB) ListAlwaysSubscribers(context.Context, string) ([]entity.Subscription, error) {
	return f.alwaysSubs, nil
}

func (f *fakeDB) ListDueSubscribers(context.Context, string, entity.Cadence, time.Time) ([]entity.Subscription, error) {
	return f.dueSubs, nil
}

func (f *fakeDB) TouchLastSent(_ context.Context, ids []int64, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, ids)
	return nil
}

func (f *fakeDB) RecordActivity(_ context.Context, in entity.RecordActivity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, in)
	return nil
}

func (f *fakeDB) ListActiveDiscussions(context.Context, entity.Cadence) ([]entity.DiscussionActivity, error) {
	return f.activeDiscussions, nil
}

func (f *fakeDB) ResetActivity(_ context.Context, discussionID, _ string, cadence entity.Cadence) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, discussionID+"/"+cadence.String())

	for i := range f.activeDiscussions {
		if f.activeDiscussions[i].DiscussionID != discussionID {
			continue
		}
		switch cadence {
		case entity.CadenceDaily:
			f.activeDiscussions[i].DailyThreads = 0
			f.activeDiscussions[i].DailyComments = 0
		case entity.CadenceWeekly:
			f.activeDiscussions[i].WeeklyThreads = 0
			f.activeDiscussions[i].WeeklyComments = 0
		}
	}

	return nil
}

func (f *fakeDB) ListDueDiscussionPairs(context.Context, time.Time) ([]entity.DiscussionActivity, error) {
	return f.duePairs, nil
}

func (f *fakeDB) CreateDigestWithDeliveryLog(_ context.Context, d entity.CreateDigest, _ entity.CreateDeliveryLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.digests = append(f.digests, d)
	return int64(len(f.digests)), nil
}

func (f *fakeDB) UpdateDeliveryLogStatus(_ context.Context, u entity.UpdateDeliveryLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, u)
	return nil
}

func (f *fakeDB) EnsureDiscussion(_ context.Context, discussionID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured = append(f.ensured, discussionID)
	return nil
}

type fakeMQ struct {
	mu        sync.Mutex
	published []event.DigestEmailMessage
	err       error
}

func (f *fakeMQ) PublishDigestEmail(_ context.Context, msg event.DigestEmailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

type fakeMail struct {
	mu       sync.Mutex
	failures int
	sent     []mail.Message
	err      error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeForum struct {
	page      entity.ThreadPage
	listErr   error
	pages     map[string][]entity.Thread // threadID -> page per call
	repeat    *entity.Thread             // returned for every page when set
	totals    map[string]int64
	calls     map[string]int
	comment   *entity.Comment
	getErr    error
	commented error
}

func (f *fakeForum) ListThreads(context.Context, string, string, int64) (entity.ThreadPage, error) {
	if f.listErr != nil {
		return entity.ThreadPage{}, f.listErr
	}
	return f.page, nil
}

func (f *fakeForum) GetThread(_ context.Context, threadID string, _, _ int64) (*entity.Thread, int64, error) {
	if f.getErr != nil {
		return nil, 0, f.getErr
	}
	if f.calls == nil {
		f.calls = make(map[string]int)
	}

	if f.repeat != nil {
		f.calls[threadID]++
		return f.repeat, f.totals[threadID], nil
	}

	pages := f.pages[threadID]
	idx := f.calls[threadID]
	f.calls[threadID]++

	t := entity.Thread{ID: threadID}
	if idx < len(pages) {
		t = pages[idx]
	}

	return &t, f.totals[threadID], nil
}

func (f *fakeForum) GetComment(context.Context, string) (*entity.Comment, error) {
	if f.commented != nil {
		return nil, f.commented
	}
	return f.comment, nil
}

type fakeCatalog struct {
	course       *entity.Course
	courseErr    error
	placement    *entity.Placement
	placementErr error
}

func (f *fakeCatalog) GetCourse(context.Context, string) (*entity.Course, error) {
	if f.courseErr != nil {
		return nil, f.courseErr
	}
	if f.course == nil {
		return &entity.Course{ID: "course-1", Name: "Distributed Systems"}, nil
	}
	return f.course, nil
}

func (f *fakeCatalog) GetPlacement(context.Context, string, string) (*entity.Placement, error) {
	if f.placementErr != nil {
		return nil, f.placementErr
	}
	if f.placement == nil {
		return &entity.Placement{DiscussionID: "disc-1", DisplayName: "Week 3", ParentName: "Forums"}, nil
	}
	return f.placement, nil
}

type testEnv struct {
	uc      *Usecase
	db      *fakeDB
	mq      *fakeMQ
	mail    *fakeMail
	forum   *fakeForum
	catalog *fakeCatalog
	idem    *passthroughIdem
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	require.NoError(t, err)

	v10, err := validator.NewV10Validator()
	require.NoError(t, err)

	env := &testEnv{
		db:      &fakeDB{},
		mq:      &fakeMQ{},
		mail:    &fakeMail{},
		forum:   &fakeForum{},
		catalog: &fakeCatalog{},
		idem:    newPassthroughIdem(),
	}

	env.uc = NewDigest(Dependency{
		RepoDB:      env.db,
		RepoMail:    env.mail,
		RepoMQ:      env.mq,
		RepoForum:   env.forum,
		RepoCatalog: env.catalog,
		Idempotency: env.idem,
		Config:      cfg,
		UID:         &seqUID{},
		Clock:       fixedClock{now: testNow},
		Validator:   v10,
		JWT:         fakeJWT{},
		Instrument:  instrument.NewNoop(),
	})

	return env
}

func requireBusinessCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, code, gerr.Code())
}

package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/BradenHooton/tiktok-automation/internal/automation"
	"github.com/BradenHooton/tiktok-automation/internal/models"
	pkgauth "github.com/BradenHooton/tiktok-automation/pkg/auth"
	pkglogger "github.com/BradenHooton/tiktok-automation/pkg/logger"
)

func init() {
	pkgauth.BcryptCost = 4
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}

func ptr(s string) *string { return &s }

// NewTestUser creates an active user with a bcrypt hash of password
func NewTestUser(id, username, email, password string) *models.User {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	now := time.Now().UTC()
	return &models.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	CreateFunc           func(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsernameFunc    func(ctx context.Context, username string) (*models.User, error)
	UpdateLoginStateFunc func(ctx context.Context, id string, failedAttempts int, lastLogin *time.Time) error
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpdateLoginState(ctx context.Context, id string, failedAttempts int, lastLogin *time.Time) error {
	if m.UpdateLoginStateFunc != nil {
		return m.UpdateLoginStateFunc(ctx, id, failedAttempts, lastLogin)
	}
	return nil
}

// MemoryUserRepository keeps users in a map so lockout state carries across calls
type MemoryUserRepository struct {
	users map[string]*models.User
}

func NewMemoryUserRepository(users ...*models.User) *MemoryUserRepository {
	repo := &MemoryUserRepository{users: make(map[string]*models.User)}
	for _, u := range users {
		repo.users[u.Username] = u
	}
	return repo
}

func (m *MemoryUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := m.users[user.Username]; ok {
		return nil, models.ErrConflict
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, models.ErrConflict
		}
	}
	user.ID = "user-" + user.Username
	m.users[user.Username] = user
	return user, nil
}

func (m *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *MemoryUserRepository) UpdateLoginState(ctx context.Context, id string, failedAttempts int, lastLogin *time.Time) error {
	for _, u := range m.users {
		if u.ID == id {
			u.FailedLoginAttempts = failedAttempts
			if lastLogin != nil {
				t := *lastLogin
				u.LastLogin = &t
			}
			return nil
		}
	}
	return models.ErrNotFound
}

// MockLockoutNotifier implements LockoutNotifier for testing
type MockLockoutNotifier struct {
	NotifyLockoutFunc func(ctx context.Context, user *models.User) error
	Calls             int
}

func (m *MockLockoutNotifier) NotifyLockout(ctx context.Context, user *models.User) error {
	m.Calls++
	if m.NotifyLockoutFunc != nil {
		return m.NotifyLockoutFunc(ctx, user)
	}
	return nil
}

// MockTikTokAccountRepository implements TikTokAccountRepository for testing
type MockTikTokAccountRepository struct {
	CreateFunc          func(ctx context.Context, account *models.TikTokAccount) (*models.TikTokAccount, error)
	GetByIDForOwnerFunc func(ctx context.Context, id, ownerID string) (*models.TikTokAccount, error)
	ListByOwnerFunc     func(ctx context.Context, ownerID string, skip, limit int) ([]*models.TikTokAccount, error)
	ListAllByOwnerFunc  func(ctx context.Context, ownerID string) ([]*models.TikTokAccount, error)
}

func (m *MockTikTokAccountRepository) Create(ctx context.Context, account *models.TikTokAccount) (*models.TikTokAccount, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	account.ID = "account-1"
	account.CreatedAt = time.Now().UTC()
	return account, nil
}

func (m *MockTikTokAccountRepository) GetByIDForOwner(ctx context.Context, id, ownerID string) (*models.TikTokAccount, error) {
	if m.GetByIDForOwnerFunc != nil {
		return m.GetByIDForOwnerFunc(ctx, id, ownerID)
	}
	return nil, models.ErrNotFound
}

func (m *MockTikTokAccountRepository) ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*models.TikTokAccount, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, skip, limit)
	}
	return []*models.TikTokAccount{}, nil
}

func (m *MockTikTokAccountRepository) ListAllByOwner(ctx context.Context, ownerID string) ([]*models.TikTokAccount, error) {
	if m.ListAllByOwnerFunc != nil {
		return m.ListAllByOwnerFunc(ctx, ownerID)
	}
	return []*models.TikTokAccount{}, nil
}

// ownedAccountRepo returns a repository that only finds account for its owner
func ownedAccountRepo(account *models.TikTokAccount) *MockTikTokAccountRepository {
	return &MockTikTokAccountRepository{
		GetByIDForOwnerFunc: func(ctx context.Context, id, ownerID string) (*models.TikTokAccount, error) {
			if id == account.ID && ownerID == account.OwnerID {
				return account, nil
			}
			return nil, models.ErrNotFound
		},
	}
}

// MockScheduleRepository implements ScheduleRepository for testing
type MockScheduleRepository struct {
	CreateFunc          func(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error)
	GetByIDForOwnerFunc func(ctx context.Context, id, ownerID string) (*models.Schedule, error)
	ListByOwnerFunc     func(ctx context.Context, ownerID string, skip, limit int) ([]*models.Schedule, error)
	ListByAccountFunc   func(ctx context.Context, accountID string) ([]*models.Schedule, error)
	ListAllByOwnerFunc  func(ctx context.Context, ownerID string) ([]*models.Schedule, error)
	DeleteFunc          func(ctx context.Context, id string) error
}

func (m *MockScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, schedule)
	}
	schedule.ID = "schedule-1"
	schedule.CreatedAt = time.Now().UTC()
	return schedule, nil
}

func (m *MockScheduleRepository) GetByIDForOwner(ctx context.Context, id, ownerID string) (*models.Schedule, error) {
	if m.GetByIDForOwnerFunc != nil {
		return m.GetByIDForOwnerFunc(ctx, id, ownerID)
	}
	return nil, models.ErrNotFound
}

func (m *MockScheduleRepository) ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*models.Schedule, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, skip, limit)
	}
	return []*models.Schedule{}, nil
}

func (m *MockScheduleRepository) ListByAccount(ctx context.Context, accountID string) ([]*models.Schedule, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID)
	}
	return []*models.Schedule{}, nil
}

func (m *MockScheduleRepository) ListAllByOwner(ctx context.Context, ownerID string) ([]*models.Schedule, error) {
	if m.ListAllByOwnerFunc != nil {
		return m.ListAllByOwnerFunc(ctx, ownerID)
	}
	return []*models.Schedule{}, nil
}

func (m *MockScheduleRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockProxyRepository implements ProxyRepository for testing
type MockProxyRepository struct {
	CreateFunc  func(ctx context.Context, proxy *models.Proxy) (*models.Proxy, error)
	GetByIDFunc func(ctx context.Context, id string) (*models.Proxy, error)
	ListFunc    func(ctx context.Context, skip, limit int) ([]*models.Proxy, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockProxyRepository) Create(ctx context.Context, proxy *models.Proxy) (*models.Proxy, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, proxy)
	}
	proxy.ID = "proxy-1"
	return proxy, nil
}

func (m *MockProxyRepository) GetByID(ctx context.Context, id string) (*models.Proxy, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockProxyRepository) List(ctx context.Context, skip, limit int) ([]*models.Proxy, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, skip, limit)
	}
	return []*models.Proxy{}, nil
}

func (m *MockProxyRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockEngagementRepository implements EngagementRepository for testing
type MockEngagementRepository struct {
	CreateFunc       func(ctx context.Context, engagement *models.Engagement) (*models.Engagement, error)
	UpdateStatusFunc func(ctx context.Context, id, status string) error
	ListByOwnerFunc  func(ctx context.Context, ownerID string, skip, limit int) ([]*models.Engagement, error)

	Created  []*models.Engagement
	Statuses []string
}

func (m *MockEngagementRepository) Create(ctx context.Context, engagement *models.Engagement) (*models.Engagement, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, engagement)
	}
	engagement.ID = "engagement-1"
	engagement.CreatedAt = time.Now().UTC()
	m.Created = append(m.Created, engagement)
	return engagement, nil
}

func (m *MockEngagementRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	m.Statuses = append(m.Statuses, status)
	return nil
}

func (m *MockEngagementRepository) ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*models.Engagement, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, skip, limit)
	}
	return []*models.Engagement{}, nil
}

// MockCascader implements Cascader for testing
type MockCascader struct {
	DeleteTikTokAccountFunc func(ctx context.Context, accountID string) error
	DeleteUserFunc          func(ctx context.Context, userID string) error

	DeletedAccounts []string
	DeletedUsers    []string
}

func (m *MockCascader) DeleteTikTokAccount(ctx context.Context, accountID string) error {
	if m.DeleteTikTokAccountFunc != nil {
		return m.DeleteTikTokAccountFunc(ctx, accountID)
	}
	m.DeletedAccounts = append(m.DeletedAccounts, accountID)
	return nil
}

func (m *MockCascader) DeleteUser(ctx context.Context, userID string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, userID)
	}
	m.DeletedUsers = append(m.DeletedUsers, userID)
	return nil
}

// MockVideoStore implements VideoStore for testing
type MockVideoStore struct {
	PutFunc    func(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	DeleteFunc func(ctx context.Context, key string) error

	Stored  map[string][]byte
	Deleted []string
}

func (m *MockVideoStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, r, size, contentType)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.Stored == nil {
		m.Stored = make(map[string][]byte)
	}
	m.Stored[key] = data
	return nil
}

func (m *MockVideoStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.Deleted = append(m.Deleted, key)
	return nil
}

// MockSubsystem implements automation.Subsystem for testing. Unset funcs
// behave like automation.Noop. Calls records every method invoked, in order.
type MockSubsystem struct {
	AddAccountFunc    func(ctx context.Context, handle, password, country string, proxy *string) error
	RemoveAccountFunc func(ctx context.Context, handle string) error
	AddPostFunc       func(ctx context.Context, handle, filePath, caption string, when time.Time, tags *string) error
	RemovePostFunc    func(ctx context.Context, id string) error
	AddProxyFunc      func(ctx context.Context, address, country string) error
	RemoveProxyFunc   func(ctx context.Context, address string) error
	LikeVideoFunc     func(ctx context.Context, handle, url string) (automation.Outcome, error)
	CommentVideoFunc  func(ctx context.Context, handle, url, text string) (automation.Outcome, error)
	ShareVideoFunc    func(ctx context.Context, handle, url, mode string) (automation.Outcome, error)
	SaveVideoFunc     func(ctx context.Context, handle, url string) (automation.Outcome, error)
	FollowUserFunc    func(ctx context.Context, handle, target string) (automation.Outcome, error)

	Calls []string
}

func (m *MockSubsystem) AddAccount(ctx context.Context, handle, password, country string, proxy *string) error {
	m.Calls = append(m.Calls, "add_account:"+handle)
	if m.AddAccountFunc != nil {
		return m.AddAccountFunc(ctx, handle, password, country, proxy)
	}
	return nil
}

func (m *MockSubsystem) RemoveAccount(ctx context.Context, handle string) error {
	m.Calls = append(m.Calls, "remove_account:"+handle)
	if m.RemoveAccountFunc != nil {
		return m.RemoveAccountFunc(ctx, handle)
	}
	return nil
}

func (m *MockSubsystem) AddPost(ctx context.Context, handle, filePath, caption string, when time.Time, tags *string) error {
	m.Calls = append(m.Calls, "add_post:"+handle)
	if m.AddPostFunc != nil {
		return m.AddPostFunc(ctx, handle, filePath, caption, when, tags)
	}
	return nil
}

func (m *MockSubsystem) RemovePost(ctx context.Context, id string) error {
	m.Calls = append(m.Calls, "remove_post:"+id)
	if m.RemovePostFunc != nil {
		return m.RemovePostFunc(ctx, id)
	}
	return nil
}

func (m *MockSubsystem) AddProxy(ctx context.Context, address, country string) error {
	m.Calls = append(m.Calls, "add_proxy:"+address)
	if m.AddProxyFunc != nil {
		return m.AddProxyFunc(ctx, address, country)
	}
	return nil
}

func (m *MockSubsystem) RemoveProxy(ctx context.Context, address string) error {
	m.Calls = append(m.Calls, "remove_proxy:"+address)
	if m.RemoveProxyFunc != nil {
		return m.RemoveProxyFunc(ctx, address)
	}
	return nil
}

func (m *MockSubsystem) LikeVideo(ctx context.Context, handle, url string) (automation.Outcome, error) {
	m.Calls = append(m.Calls, "like:"+handle)
	if m.LikeVideoFunc != nil {
		return m.LikeVideoFunc(ctx, handle, url)
	}
	return automation.OutcomeSkipped, nil
}

func (m *MockSubsystem) CommentVideo(ctx context.Context, handle, url, text string) (automation.Outcome, error) {
	m.Calls = append(m.Calls, "comment:"+handle)
	if m.CommentVideoFunc != nil {
		return m.CommentVideoFunc(ctx, handle, url, text)
	}
	return automation.OutcomeSkipped, nil
}

func (m *MockSubsystem) ShareVideo(ctx context.Context, handle, url, mode string) (automation.Outcome, error) {
	m.Calls = append(m.Calls, "share:"+handle)
	if m.ShareVideoFunc != nil {
		return m.ShareVideoFunc(ctx, handle, url, mode)
	}
	return automation.OutcomeSkipped, nil
}

func (m *MockSubsystem) SaveVideo(ctx context.Context, handle, url string) (automation.Outcome, error) {
	m.Calls = append(m.Calls, "save:"+handle)
	if m.SaveVideoFunc != nil {
		return m.SaveVideoFunc(ctx, handle, url)
	}
	return automation.OutcomeSkipped, nil
}

func (m *MockSubsystem) FollowUser(ctx context.Context, handle, target string) (automation.Outcome, error) {
	m.Calls = append(m.Calls, "follow:"+handle)
	if m.FollowUserFunc != nil {
		return m.FollowUserFunc(ctx, handle, target)
	}
	return automation.OutcomeSkipped, nil
}

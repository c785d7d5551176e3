package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"carenest/database"
	"carenest/models"
	"carenest/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryCodeStore struct {
	mu       sync.Mutex
	hashes   map[string]string
	attempts map[string]int
}

func newMemoryCodeStore() *memoryCodeStore {
	return &memoryCodeStore{hashes: map[string]string{}, attempts: map[string]int{}}
}

func (m *memoryCodeStore) Save(ctx context.Context, phone, hash string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashes[phone] = hash
	m.attempts[phone] = 0
	return nil
}

func (m *memoryCodeStore) Get(ctx context.Context, phone string) (string, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash, ok := m.hashes[phone]
	if !ok {
		return "", 0, ErrCodeNotFound
	}
	return hash, m.attempts[phone], nil
}

func (m *memoryCodeStore) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hashes[phone]; !ok {
		return 0, ErrCodeNotFound
	}
	m.attempts[phone]++
	return m.attempts[phone], nil
}

func (m *memoryCodeStore) Delete(ctx context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hashes, phone)
	delete(m.attempts, phone)
	return nil
}

type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUserStore(users ...*models.User) *memoryUserStore {
	s := &memoryUserStore{users: map[string]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (m *memoryUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memoryUserStore) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Phone == phone {
			copied := *u
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memoryUserStore) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Phone == u.Phone {
			return database.ErrDuplicate
		}
	}
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *memoryUserStore) UpdateProfile(ctx context.Context, id string, req models.UserUpdateRequest) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Provider != nil {
		u.Provider = req.Provider
	}
	copied := *u
	return &copied, nil
}

func (m *memoryUserStore) UpdateFCMToken(ctx context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	u.FCMToken = token
	return nil
}

type memoryTransactions []models.Transaction

func (m memoryTransactions) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Transaction, int64, error) {
	var out []models.Transaction
	for _, t := range m {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

type capturingSMS struct {
	last map[string]string
}

func (c *capturingSMS) SendSMS(ctx context.Context, phone, message string) error {
	if c.last == nil {
		c.last = map[string]string{}
	}
	c.last[phone] = message
	return nil
}

func newTestUserService(t *testing.T, users ...*models.User) (*DefaultUserService, *memoryCodeStore, *memoryUserStore, *capturingSMS) {
	t.Helper()
	codes := newMemoryCodeStore()
	store := newMemoryUserStore(users...)
	sms := &capturingSMS{}
	svc, err := NewUserService(store, memoryTransactions{}, codes, sms, AuthSettings{
		OTPTTL:      5 * time.Minute,
		MaxAttempts: 3,
		TokenTTL:    time.Hour,
		ExposeCodes: true,
	}, zap.NewNop())
	require.NoError(t, err)
	return svc, codes, store, sms
}

func TestRequestLoginOTP(t *testing.T) {
	svc, codes, _, sms := newTestUserService(t)

	resp, err := svc.RequestLoginOTP(context.Background(), "+254 700-000-001")
	require.NoError(t, err)
	assert.Equal(t, "+254700000001", resp.Phone)
	assert.Regexp(t, `^\d{6}$`, resp.Code)
	assert.Contains(t, sms.last["+254700000001"], resp.Code)

	hash, attempts, err := codes.Get(context.Background(), "+254700000001")
	require.NoError(t, err)
	assert.NotEqual(t, resp.Code, hash, "only the hash is stored")
	assert.Zero(t, attempts)

	_, err = svc.RequestLoginOTP(context.Background(), "call me")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestVerifyLoginOTP_CreatesUserOnFirstLogin(t *testing.T) {
	svc, codes, store, _ := newTestUserService(t)
	ctx := context.Background()

	resp, err := svc.RequestLoginOTP(ctx, "+254700000009")
	require.NoError(t, err)

	auth, err := svc.VerifyLoginOTP(ctx, models.LoginVerifyRequest{
		Phone: "+254700000009", Code: resp.Code, Name: "Grace", Role: models.RoleNanny,
	})
	require.NoError(t, err)
	assert.True(t, auth.IsNewUser)
	assert.Equal(t, models.RoleNanny, auth.User.Role)
	require.NotNil(t, auth.User.Provider)
	assert.Equal(t, models.RoleNanny, auth.User.Provider.ProviderType)

	claims, err := utils.ParseToken(auth.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.User.ID, claims.UserID)
	assert.Equal(t, models.RoleNanny, claims.Role)

	_, _, err = codes.Get(ctx, "+254700000009")
	assert.ErrorIs(t, err, ErrCodeNotFound, "codes are single use")

	_, err = store.GetByPhone(ctx, "+254700000009")
	assert.NoError(t, err)
}

func TestVerifyLoginOTP_ExistingUser(t *testing.T) {
	existing := &models.User{ID: "parent-1", Phone: "+254700000001", Role: models.RoleParent}
	svc, _, _, _ := newTestUserService(t, existing)
	ctx := context.Background()

	resp, err := svc.RequestLoginOTP(ctx, existing.Phone)
	require.NoError(t, err)
	auth, err := svc.VerifyLoginOTP(ctx, models.LoginVerifyRequest{Phone: existing.Phone, Code: resp.Code, Role: models.RoleNanny})
	require.NoError(t, err)
	assert.False(t, auth.IsNewUser)
	assert.Equal(t, "parent-1", auth.User.ID)
	assert.Equal(t, models.RoleParent, auth.User.Role, "role is fixed after signup")
}

func TestVerifyLoginOTP_LockoutAfterMaxAttempts(t *testing.T) {
	svc, codes, _, _ := newTestUserService(t)
	ctx := context.Background()
	phone := "+254700000010"

	resp, err := svc.RequestLoginOTP(ctx, phone)
	require.NoError(t, err)
	wrong := "000000"
	if resp.Code == wrong {
		wrong = "111111"
	}

	for i := 0; i < 3; i++ {
		_, err := svc.VerifyLoginOTP(ctx, models.LoginVerifyRequest{Phone: phone, Code: wrong})
		assert.Equal(t, utils.KindInvalidCode, utils.KindOf(err))
	}

	_, err = svc.VerifyLoginOTP(ctx, models.LoginVerifyRequest{Phone: phone, Code: resp.Code})
	assert.Equal(t, utils.KindState, utils.KindOf(err), "locked even with the right code")

	_, _, err = codes.Get(ctx, phone)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestVerifyLoginOTP_ConcurrentGuessesAreBounded(t *testing.T) {
	svc, _, _, _ := newTestUserService(t)
	ctx := context.Background()
	phone := "+254700000012"

	resp, err := svc.RequestLoginOTP(ctx, phone)
	require.NoError(t, err)
	wrong := "000000"
	if resp.Code == wrong {
		wrong = "111111"
	}

	const guesses = 12
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		compared int
	)
	for i := 0; i < guesses; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.VerifyLoginOTP(ctx, models.LoginVerifyRequest{Phone: phone, Code: wrong})
			if utils.KindOf(err) == utils.KindInvalidCode {
				mu.Lock()
				compared++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, compared, "only MaxAttempts guesses reach the compare")
	_, err = svc.VerifyLoginOTP(ctx, models.LoginVerifyRequest{Phone: phone, Code: resp.Code})
	assert.Error(t, err)
}

func TestVerifyLoginOTP_Expired(t *testing.T) {
	svc, _, _, _ := newTestUserService(t)

	_, err := svc.VerifyLoginOTP(context.Background(), models.LoginVerifyRequest{Phone: "+254700000011", Code: "123456"})
	assert.Equal(t, utils.KindExpired, utils.KindOf(err))
}

func TestVerifyLoginOTP_AdminCannotSelfRegister(t *testing.T) {
	svc, _, _, _ := newTestUserService(t)
	ctx := context.Background()

	resp, err := svc.RequestLoginOTP(ctx, "+254700000012")
	require.NoError(t, err)
	_, err = svc.VerifyLoginOTP(ctx, models.LoginVerifyRequest{Phone: "+254700000012", Code: resp.Code, Role: models.RoleAdmin})
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

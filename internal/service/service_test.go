package service

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/cryptosafe/internal/audit"
	"github.com/MKhiriev/cryptosafe/internal/crypto"
	"github.com/MKhiriev/cryptosafe/internal/events"
	"github.com/MKhiriev/cryptosafe/internal/logger"
	"github.com/MKhiriev/cryptosafe/internal/mock"
	"github.com/MKhiriev/cryptosafe/internal/session"
	"github.com/MKhiriev/cryptosafe/internal/store"
	"github.com/MKhiriev/cryptosafe/internal/vault"
	"github.com/MKhiriev/cryptosafe/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const masterPassword = "correct horse 42"

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// memClipboard is an in-memory clipboard.Writer.
type memClipboard struct {
	mu   sync.Mutex
	text string
}

func (m *memClipboard) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

func (m *memClipboard) ReadAll() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

type testEnv struct {
	svc      *VaultService
	storage  *store.Storage
	settings store.SettingsRepository
	session  *session.State
	clock    *testClock
	clip     *memClipboard
	events   []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithClipboard(t, nil)
}

func newTestEnvWithClipboard(t *testing.T, clip *mock.MockWriter) *testEnv {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "vault.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.InitSchema(ctx))

	env := &testEnv{
		storage: s,
		clock:   &testClock{t: time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)},
		clip:    &memClipboard{},
	}

	bus := events.NewBus(logger.Nop())
	for _, event := range events.All() {
		bus.Subscribe(event, func(ctx context.Context, event string, payload events.Payload) error {
			env.events = append(env.events, event)
			return nil
		})
	}

	cipher := crypto.NewAESGCMCipher()
	env.settings = store.NewSettingsRepository(s, logger.Nop())
	env.session = session.New(bus, session.WithClock(env.clock.Now))

	deps := Deps{
		Entries:     vault.NewRepository(s, cipher, logger.Nop()),
		Settings:    env.settings,
		Audit:       audit.RegisterHandlers(bus, store.NewAuditRepository(s, logger.Nop()), logger.Nop()),
		Keys:        crypto.NewKeyManager(crypto.KDFParams{Time: 1, MemoryKiB: 1024, Threads: 1}, ""),
		Cipher:      cipher,
		Bus:         bus,
		Session:     env.session,
		Clipboard:   env.clip,
		Preferences: models.DefaultPreferences(),
		Logger:      logger.Nop(),
	}
	if clip != nil {
		deps.Clipboard = clip
	}
	env.svc = NewVaultService(deps)
	return env
}

func (e *testEnv) setup(t *testing.T) {
	t.Helper()
	require.NoError(t, e.svc.Setup(context.Background(), masterPassword))
}

func TestValidateMasterPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "ok", password: "abcdefghijk1", wantErr: false},
		{name: "too short", password: "abc1", wantErr: true},
		{name: "eleven chars", password: "abcdefghij1", wantErr: true},
		{name: "no digit", password: "abcdefghijklmnop", wantErr: true},
		{name: "unicode length", password: "пароль-очень1", wantErr: false},
		{name: "empty", password: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMasterPassword(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWeakMasterPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	initialized, err := env.svc.IsInitialized(ctx)
	require.NoError(t, err)
	assert.False(t, initialized)

	env.setup(t)

	initialized, err = env.svc.IsInitialized(ctx)
	require.NoError(t, err)
	assert.True(t, initialized)
	assert.False(t, env.svc.IsLocked())
	assert.NotNil(t, env.session.Key())

	salt, err := env.settings.GetSetting(ctx, models.SettingMasterSalt)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(string(salt.Value))
	require.NoError(t, err)
	assert.Len(t, decoded, crypto.DefaultSaltSize)

	verifier, err := env.settings.GetSetting(ctx, models.SettingMasterVerifier)
	require.NoError(t, err)
	assert.True(t, verifier.Encrypted)
	assert.NotContains(t, string(verifier.Value), string(verifierPlaintext))

	assert.ErrorIs(t, env.svc.Setup(ctx, masterPassword), ErrAlreadyInitialized)
}

func TestSetup_WeakPasswordStoresNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, env.svc.Setup(ctx, "short1"), ErrWeakMasterPassword)

	initialized, err := env.svc.IsInitialized(ctx)
	require.NoError(t, err)
	assert.False(t, initialized)
	assert.True(t, env.svc.IsLocked())
}

func TestUnlock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setup(t)
	env.svc.Lock(ctx)
	require.True(t, env.svc.IsLocked())
	assert.Nil(t, env.session.Key())

	err := env.svc.Unlock(ctx, "wrong password 1")
	assert.ErrorIs(t, err, ErrCannotUnlock)
	assert.True(t, env.svc.IsLocked())

	require.NoError(t, env.svc.Unlock(ctx, masterPassword))
	assert.False(t, env.svc.IsLocked())
}

func TestUnlock_KeyDecryptsExistingEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setup(t)

	id, err := env.svc.AddEntry(ctx, models.EntryInput{Title: "mail", Password: "p@ss"})
	require.NoError(t, err)

	env.svc.Lock(ctx)
	require.NoError(t, env.svc.Unlock(ctx, masterPassword))

	entry, err := env.svc.RevealEntry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "p@ss", entry.Password)
}

func TestUnlock_NotInitialized(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.Unlock(context.Background(), masterPassword)
	assert.Equal(t, ErrCannotUnlock, err)
	assert.True(t, env.svc.IsLocked())
}

func TestUnlock_CorruptSalt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setup(t)
	env.svc.Lock(ctx)

	require.NoError(t, env.settings.PutSetting(ctx, models.Setting{
		Key:   models.SettingMasterSalt,
		Value: []byte("%%% not base64 %%%"),
	}))

	err := env.svc.Unlock(ctx, masterPassword)
	assert.Equal(t, ErrCannotUnlock, err, "the cause must not leak")
}

func TestUnlock_MissingVerifierRejectsEveryPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setup(t)
	id, err := env.svc.AddEntry(ctx, models.EntryInput{Title: "mail", Password: "p@ss"})
	require.NoError(t, err)
	env.svc.Lock(ctx)
	require.NoError(t, env.settings.DeleteSetting(ctx, models.SettingMasterVerifier))

	assert.Equal(t, ErrCannotUnlock, env.svc.Unlock(ctx, "another password 9"))
	assert.True(t, env.svc.IsLocked())
	assert.Equal(t, ErrCannotUnlock, env.svc.Unlock(ctx, masterPassword))

	_, err = env.settings.GetSetting(ctx, models.SettingMasterVerifier)
	assert.ErrorIs(t, err, store.ErrSettingNotFound, "a failed unlock must not write a verifier")

	_, err = env.svc.RevealEntry(ctx, id)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestSetup_WritesSaltAndVerifierTogether(t *testing.T) {
	ctrl := gomock.NewController(t)
	settings := mock.NewMockSettingsRepository(ctrl)
	svc := NewVaultService(Deps{
		Settings:    settings,
		Keys:        crypto.NewKeyManager(crypto.KDFParams{Time: 1, MemoryKiB: 1024, Threads: 1}, ""),
		Cipher:      crypto.NewAESGCMCipher(),
		Session:     session.New(nil),
		Preferences: models.DefaultPreferences(),
	})

	settings.EXPECT().
		GetSetting(gomock.Any(), models.SettingMasterSalt).
		Return(models.Setting{}, store.ErrSettingNotFound)
	settings.EXPECT().
		PutSettings(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, written ...models.Setting) error {
			require.Len(t, written, 2)
			assert.Equal(t, models.SettingMasterSalt, written[0].Key)
			assert.Equal(t, models.SettingMasterVerifier, written[1].Key)
			assert.True(t, written[1].Encrypted)
			return store.ErrStorage
		})

	err := svc.Setup(context.Background(), masterPassword)
	assert.ErrorIs(t, err, store.ErrStorage)
	assert.True(t, svc.IsLocked())
}

func TestLockedOperations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	title := "x"

	_, err := env.svc.AddEntry(ctx, models.EntryInput{Title: "x"})
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorIs(t, env.svc.UpdateEntry(ctx, 1, models.EntryUpdate{Title: &title}), ErrLocked)
	assert.ErrorIs(t, env.svc.DeleteEntry(ctx, 1), ErrLocked)
	_, err = env.svc.ListEntries(ctx)
	assert.ErrorIs(t, err, ErrLocked)
	_, err = env.svc.RevealEntry(ctx, 1)
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorIs(t, env.svc.CopyPassword(ctx, 1), ErrLocked)

	assert.Empty(t, env.events)
}

func TestEntryLifecycle_PublishesAndAudits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setup(t)

	id, err := env.svc.AddEntry(ctx, models.EntryInput{Title: " GitHub ", Username: "octo", Password: "pw"})
	require.NoError(t, err)

	newPassword := "pw2"
	require.NoError(t, env.svc.UpdateEntry(ctx, id, models.EntryUpdate{Password: &newPassword}))

	entries, err := env.svc.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "GitHub", entries[0].Title)

	revealed, err := env.svc.RevealEntry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "pw2", revealed.Password)

	require.NoError(t, env.svc.DeleteEntry(ctx, id))

	assert.Equal(t, []string{
		events.UserLoggedIn,
		events.EntryAdded,
		events.EntryUpdated,
		events.EntryDeleted,
	}, env.events)

	trail, err := env.svc.AuditTrail(ctx, 0)
	require.NoError(t, err)
	require.Len(t, trail, 4)
	assert.Equal(t, events.EntryDeleted, trail[0].Action)
	require.NotNil(t, trail[0].EntryID)
	assert.Equal(t, id, *trail[0].EntryID)
	assert.Equal(t, events.EntryAdded, trail[2].Action)
	assert.Equal(t, "title=GitHub", trail[2].Details)
	assert.Equal(t, events.UserLoggedIn, trail[3].Action)
}

func TestFailedOperationsPublishNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setup(t)
	env.events = nil

	_, err := env.svc.AddEntry(ctx, models.EntryInput{Title: "  "})
	assert.ErrorIs(t, err, vault.ErrValidation)

	title := "x"
	err = env.svc.UpdateEntry(ctx, 404, models.EntryUpdate{Title: &title})
	assert.ErrorIs(t, err, vault.ErrNotFound)

	assert.Empty(t, env.events)
}

func TestCopyPassword_TickClearsExpiredClipboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setup(t)

	id, err := env.svc.AddEntry(ctx, models.EntryInput{Title: "bank", Password: "1234"})
	require.NoError(t, err)

	require.NoError(t, env.svc.CopyPassword(ctx, id))
	assert.Equal(t, "1234", env.clip.text)
	remaining, ok := env.session.ClipboardTimerRemaining()
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, remaining)

	env.clock.Advance(10 * time.Second)
	assert.Equal(t, TickResult{}, env.svc.Tick(ctx))
	assert.Equal(t, "1234", env.clip.text)

	env.clock.Advance(25 * time.Second)
	assert.Equal(t, TickResult{ClipboardCleared: true}, env.svc.Tick(ctx))
	assert.Equal(t, "", env.clip.text)
	assert.Equal(t, "", env.session.ClipboardContent())

	assert.Contains(t, env.events, events.ClipboardCopied)
	assert.Contains(t, env.events, events.ClipboardCleared)
}

func TestClearClipboard_LeavesForeignContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setup(t)

	id, err := env.svc.AddEntry(ctx, models.EntryInput{Title: "bank", Password: "1234"})
	require.NoError(t, err)
	require.NoError(t, env.svc.CopyPassword(ctx, id))

	require.NoError(t, env.clip.WriteAll("user copied this"))
	env.svc.ClearClipboard(ctx)

	assert.Equal(t, "user copied this", env.clip.text)
	assert.Equal(t, "", env.session.ClipboardContent())
}

func TestCopyPassword_ClipboardFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	clip := mock.NewMockWriter(ctrl)
	env := newTestEnvWithClipboard(t, clip)
	ctx := context.Background()
	env.setup(t)

	id, err := env.svc.AddEntry(ctx, models.EntryInput{Title: "bank", Password: "1234"})
	require.NoError(t, err)

	clip.EXPECT().WriteAll("1234").Return(errors.New("no display"))

	err = env.svc.CopyPassword(ctx, id)
	assert.Error(t, err)
	assert.Equal(t, "", env.session.ClipboardContent())
	assert.NotContains(t, env.events, events.ClipboardCopied)
}

func TestTick_AutoLocksIdleSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setup(t)
	require.NoError(t, env.svc.SetPreferences(ctx, models.Preferences{ClipboardTimeout: 300, AutoLockMinutes: 1}))

	id, err := env.svc.AddEntry(ctx, models.EntryInput{Title: "bank", Password: "1234"})
	require.NoError(t, err)
	require.NoError(t, env.svc.CopyPassword(ctx, id))

	env.clock.Advance(59 * time.Second)
	assert.Equal(t, TickResult{}, env.svc.Tick(ctx))

	env.svc.Touch()
	env.clock.Advance(59 * time.Second)
	assert.Equal(t, TickResult{}, env.svc.Tick(ctx))

	env.clock.Advance(time.Second)
	assert.Equal(t, TickResult{Locked: true}, env.svc.Tick(ctx))
	assert.True(t, env.svc.IsLocked())
	assert.Nil(t, env.session.Key())
	assert.Equal(t, "", env.clip.text, "locking takes the password back")
}

func TestTick_ZeroClipboardTimeoutClearsOnNextTick(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setup(t)
	require.NoError(t, env.svc.SetPreferences(ctx, models.Preferences{ClipboardTimeout: 0, AutoLockMinutes: 0}))

	id, err := env.svc.AddEntry(ctx, models.EntryInput{Title: "bank", Password: "1234"})
	require.NoError(t, err)
	require.NoError(t, env.svc.CopyPassword(ctx, id))
	assert.Equal(t, "1234", env.clip.text)

	assert.Equal(t, TickResult{ClipboardCleared: true}, env.svc.Tick(ctx))
	assert.Equal(t, "", env.clip.text)
	assert.Equal(t, "", env.session.ClipboardContent())
}

func TestPreferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.Equal(t, models.DefaultPreferences(), env.svc.Preferences())

	for _, bad := range []models.Preferences{
		{ClipboardTimeout: -1, AutoLockMinutes: 5},
		{ClipboardTimeout: 301, AutoLockMinutes: 5},
		{ClipboardTimeout: 30, AutoLockMinutes: 121},
	} {
		assert.ErrorIs(t, env.svc.SetPreferences(ctx, bad), ErrInvalidPreferences)
	}
	assert.Equal(t, models.DefaultPreferences(), env.svc.Preferences())

	want := models.Preferences{ClipboardTimeout: 0, AutoLockMinutes: 120}
	require.NoError(t, env.svc.SetPreferences(ctx, want))
	assert.Equal(t, want, env.svc.Preferences())
	assert.Equal(t, 120*time.Minute, env.session.InactivityTimeout())

	setting, err := env.settings.GetSetting(ctx, models.SettingAutoLockMinutes)
	require.NoError(t, err)
	assert.Equal(t, "120", string(setting.Value))
}

func TestLoadPreferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.settings.PutSetting(ctx, models.Setting{Key: models.SettingClipboardTimeout, Value: []byte("45")}))
	require.NoError(t, env.settings.PutSetting(ctx, models.Setting{Key: models.SettingAutoLockMinutes, Value: []byte("oops")}))

	prefs := env.svc.LoadPreferences(ctx)
	assert.Equal(t, models.Preferences{ClipboardTimeout: 45, AutoLockMinutes: models.DefaultAutoLockMinutes}, prefs)
	assert.Equal(t, prefs, env.svc.Preferences())

	require.NoError(t, env.settings.PutSetting(ctx, models.Setting{Key: models.SettingClipboardTimeout, Value: []byte("999")}))
	prefs = env.svc.LoadPreferences(ctx)
	assert.Equal(t, 45, prefs.ClipboardTimeout, "out of range values are ignored")
}

func TestUnlock_LoadsPreferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setup(t)
	env.svc.Lock(ctx)

	require.NoError(t, env.settings.PutSetting(ctx, models.Setting{Key: models.SettingAutoLockMinutes, Value: []byte("0")}))
	require.NoError(t, env.svc.Unlock(ctx, masterPassword))

	assert.Equal(t, 0, env.svc.Preferences().AutoLockMinutes)
	env.clock.Advance(24 * time.Hour)
	assert.False(t, env.svc.Tick(ctx).Locked)
}

func newSettingsOnlyService(t *testing.T) (*VaultService, *mock.MockSettingsRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	settings := mock.NewMockSettingsRepository(ctrl)
	svc := NewVaultService(Deps{
		Settings:    settings,
		Session:     session.New(nil),
		Preferences: models.DefaultPreferences(),
	})
	return svc, settings
}

func TestSetPreferences_PersistFailureIsBestEffort(t *testing.T) {
	svc, settings := newSettingsOnlyService(t)
	settings.EXPECT().PutSetting(gomock.Any(), gomock.Any()).Return(store.ErrStorage).Times(2)

	prefs := models.Preferences{ClipboardTimeout: 10, AutoLockMinutes: 1}
	require.NoError(t, svc.SetPreferences(context.Background(), prefs))

	assert.Equal(t, prefs, svc.Preferences())
	assert.Equal(t, time.Minute, svc.Session().InactivityTimeout())
}

func TestLoadPreferences_SkipsUnreadableValues(t *testing.T) {
	svc, settings := newSettingsOnlyService(t)
	settings.EXPECT().
		GetSetting(gomock.Any(), models.SettingClipboardTimeout).
		Return(models.Setting{Key: models.SettingClipboardTimeout, Value: []byte("soon")}, nil)
	settings.EXPECT().
		GetSetting(gomock.Any(), models.SettingAutoLockMinutes).
		Return(models.Setting{Key: models.SettingAutoLockMinutes, Value: []byte(" 12 ")}, nil)

	prefs := svc.LoadPreferences(context.Background())
	assert.Equal(t, models.DefaultClipboardTimeout, prefs.ClipboardTimeout)
	assert.Equal(t, 12, prefs.AutoLockMinutes)
}

func TestLoadPreferences_StorageErrorKeepsCurrent(t *testing.T) {
	svc, settings := newSettingsOnlyService(t)
	settings.EXPECT().GetSetting(gomock.Any(), gomock.Any()).Return(models.Setting{}, store.ErrStorage).Times(2)

	assert.Equal(t, models.DefaultPreferences(), svc.LoadPreferences(context.Background()))
}

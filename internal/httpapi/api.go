package httpapi

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"quizmaster/internal/store/sqlite"
)

const (
	defaultPassThreshold = 80
	defaultSessionTTL    = 30 * time.Minute
	defaultLoginRate     = 10
	popularQuizLimit     = 5
)

type Options struct {
	PassThreshold      float64
	SessionTTL         time.Duration
	JWTSecret          string
	LoginRatePerMinute int
	SecureCookies      bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Metrics    *Metrics
}

type API struct {
	store         *sqlite.SQLiteStore
	logger        *zap.Logger
	tokens        *tokenIssuer
	passThreshold float64
	secureCookies bool
	bcryptCost    int
	newID         func() string
}

func NewAPI(store *sqlite.SQLiteStore, logger *zap.Logger, opts Options) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PassThreshold <= 0 {
		opts.PassThreshold = defaultPassThreshold
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	secret := strings.TrimSpace(opts.JWTSecret)
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		logger.Warn("no jwt secret configured; tokens will not survive a restart")
	}

	return &API{
		store:         store,
		logger:        logger,
		tokens:        newTokenIssuer([]byte(secret), opts.SessionTTL),
		passThreshold: opts.PassThreshold,
		secureCookies: opts.SecureCookies,
		bcryptCost:    opts.BcryptCost,
		newID:         uuid.NewString,
	}
}

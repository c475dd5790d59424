// Package seed loads demo users and exchange requests from a YAML fixture.
package seed

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/cashswap-backend/internal/data/repos"
	"github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/geo"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type Fixture struct {
	Users    []UserFixture    `yaml:"users"`
	Requests []RequestFixture `yaml:"requests"`
}

type UserFixture struct {
	FirstName  string `yaml:"first_name"`
	SecondName string `yaml:"second_name"`
	Email      string `yaml:"email"`
	// Password is hashed on load; PasswordHash is stored as is.
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
}

type RequestFixture struct {
	Email    string  `yaml:"email"`
	Name     string  `yaml:"name"`
	Have     string  `yaml:"have"`
	Want     string  `yaml:"want"`
	Amount   float64 `yaml:"amount"`
	Location struct {
		Longitude float64 `yaml:"longitude"`
		Latitude  float64 `yaml:"latitude"`
	} `yaml:"location"`
	// Age backdates postedAt, e.g. "30m".
	Age string `yaml:"age"`
}

// Load decodes and validates a fixture. Unknown keys are rejected.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) Validate() error {
	seen := map[string]bool{}
	for i, u := range f.Users {
		email := domain.NormalizeIdentity(u.Email)
		if email == "" {
			return fmt.Errorf("users[%d]: email required", i)
		}
		if seen[email] {
			return fmt.Errorf("users[%d]: duplicate email %s", i, email)
		}
		seen[email] = true
		if u.Password == "" && u.PasswordHash == "" {
			return fmt.Errorf("users[%d]: password or password_hash required", i)
		}
	}
	for i, r := range f.Requests {
		if domain.NormalizeIdentity(r.Email) == "" {
			return fmt.Errorf("requests[%d]: email required", i)
		}
		have, ok1 := domain.ParseMoneyKind(r.Have)
		want, ok2 := domain.ParseMoneyKind(r.Want)
		if !ok1 || !ok2 || have == want {
			return fmt.Errorf("requests[%d]: have/want must be distinct kinds", i)
		}
		if r.Amount <= 0 {
			return fmt.Errorf("requests[%d]: amount must be positive", i)
		}
		if err := geo.NewPoint(r.Location.Longitude, r.Location.Latitude).Validate(); err != nil {
			return fmt.Errorf("requests[%d]: %w", i, err)
		}
		if r.Age != "" {
			if _, err := time.ParseDuration(r.Age); err != nil {
				return fmt.Errorf("requests[%d]: age: %w", i, err)
			}
		}
	}
	return nil
}

type Result struct {
	UsersCreated    int
	UsersSkipped    int
	RequestsCreated int
}

type Seeder struct {
	log        *logger.Logger
	users      repos.UserRepo
	requests   repos.RequestRepo
	bcryptCost int
	now        func() time.Time
}

func NewSeeder(log *logger.Logger, users repos.UserRepo, requests repos.RequestRepo) *Seeder {
	return &Seeder{
		log:        log.With("component", "Seeder"),
		users:      users,
		requests:   requests,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Apply inserts the fixture. Users that already exist are left untouched and
// their requests are skipped, so running the seed twice adds nothing.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (Result, error) {
	var res Result
	dbc := dbctx.Context{Ctx: ctx}
	skip := map[string]bool{}

	for _, u := range f.Users {
		email := domain.NormalizeIdentity(u.Email)
		exists, err := s.users.EmailExists(dbc, email)
		if err != nil {
			return res, fmt.Errorf("check %s: %w", email, err)
		}
		if exists {
			skip[email] = true
			res.UsersSkipped++
			continue
		}
		hash := u.PasswordHash
		if hash == "" {
			b, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.bcryptCost)
			if err != nil {
				return res, fmt.Errorf("hash password: %w", err)
			}
			hash = string(b)
		}
		if _, err := s.users.Create(dbc, &domain.User{
			Email:      email,
			Password:   hash,
			FirstName:  strings.TrimSpace(u.FirstName),
			SecondName: strings.TrimSpace(u.SecondName),
			Verified:   true,
		}); err != nil {
			return res, fmt.Errorf("create user %s: %w", email, err)
		}
		res.UsersCreated++
	}

	now := s.now().UTC()
	for _, r := range f.Requests {
		email := domain.NormalizeIdentity(r.Email)
		if skip[email] {
			continue
		}
		have, _ := domain.ParseMoneyKind(r.Have)
		want, _ := domain.ParseMoneyKind(r.Want)
		posted := now
		if r.Age != "" {
			age, _ := time.ParseDuration(r.Age)
			posted = now.Add(-age)
		}
		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		if _, err := s.requests.Create(dbc, &domain.ExchangeRequest{
			PosterName:  name,
			PosterEmail: email,
			Have:        have,
			Want:        want,
			Amount:      r.Amount,
			Location:    geo.NewPoint(r.Location.Longitude, r.Location.Latitude),
			PostedAt:    posted,
		}); err != nil {
			return res, fmt.Errorf("create request for %s: %w", email, err)
		}
		res.RequestsCreated++
	}
	s.log.Info("seed applied", "users_created", res.UsersCreated, "users_skipped", res.UsersSkipped, "requests_created", res.RequestsCreated)
	return res, nil
}

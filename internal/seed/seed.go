package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marga-Ghale/ora-chat-backend/internal/membership"
	"github.com/Marga-Ghale/ora-chat-backend/internal/repository"
)

const defaultPassword = "password123"

type seedUser struct {
	name, surname, email string
	admin                bool
}

var users = []seedUser{
	{name: "Marga", surname: "Ghale", email: "admin@ora.chat", admin: true},
	{name: "Bipin", surname: "Dhimal", email: "bipin@ora.chat"},
	{name: "Kritim", surname: "Kafle", email: "kritim@ora.chat"},
}

// SeedData creates an admin, two regular users and a demo group with one
// pending invitation. Users whose email already exists are left untouched,
// and the group is only created when the admin is new.
func SeedData(ctx context.Context, repos *repository.Repositories, log *zap.Logger) error {
	log = log.Named("seed")

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	created := make([]*repository.User, 0, len(users))
	for _, u := range users {
		existing, err := repos.UserRepo.FindByEmail(ctx, u.email)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", u.email, err)
		}
		if existing != nil {
			log.Debug("user exists, skipping", zap.String("email", u.email))
			created = append(created, nil)
			continue
		}

		user := &repository.User{
			Name:         u.name,
			Surname:      u.surname,
			Email:        u.email,
			PasswordHash: string(hash),
			IsAdmin:      u.admin,
		}
		if err := repos.UserRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("create %s: %w", u.email, err)
		}
		created = append(created, user)
	}

	admin, invitee := created[0], created[1]
	if admin == nil || invitee == nil {
		log.Info("seed data already present")
		return nil
	}

	now := time.Now()
	group := &repository.Group{Name: "General", OwnerID: admin.ID}
	if err := repos.GroupRepo.CreateWithOwner(ctx, group, membership.NewApprovedOwner("", admin.ID, now)); err != nil {
		return fmt.Errorf("create demo group: %w", err)
	}
	if err := repos.MembershipRepo.Create(ctx, membership.New(group.ID, invitee.ID, now)); err != nil {
		return fmt.Errorf("create demo invitation: %w", err)
	}

	log.Info("seed data created",
		zap.Int("users", len(users)),
		zap.String("group", group.ID),
		zap.String("password", defaultPassword),
	)
	return nil
}

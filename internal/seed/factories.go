// Package seed provides helpers to create demo and test data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SCGamer30/jam-match-sub001/internal/models"
)

// DefaultPassword is the password assigned to every seeded user.
const DefaultPassword = "Jam4tune!pass"

var seedCities = []string{
	"Austin", "Nashville", "Seattle", "Portland", "Chicago",
	"New York", "Los Angeles", "Denver", "Atlanta", "Boston",
}

var seedRoles = []models.PrimaryRole{
	models.RoleDrummer, models.RoleGuitarist, models.RoleBassist,
	models.RoleSinger, models.RoleOther,
}

var seedLevels = []models.ExperienceLevel{
	models.ExperienceBeginner, models.ExperienceIntermediate,
	models.ExperienceAdvanced, models.ExperienceProfessional,
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// pick returns n distinct random entries from vocab.
func (f *Factory) pick(vocab []string, n int) models.StringList {
	if n > len(vocab) {
		n = len(vocab)
	}
	perm := f.rand.Perm(len(vocab))
	out := make(models.StringList, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, vocab[idx])
	}
	return out
}

// CreateUser constructs and persists a sample musician with a completed
// profile. Optional override functions may modify the user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:         gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:            gofakeit.Email(),
		Password:         string(hashed),
		Name:             gofakeit.Name(),
		Bio:              gofakeit.Sentence(12),
		PrimaryRole:      seedRoles[f.rand.Intn(len(seedRoles))],
		Instruments:      f.pick(models.Instruments, 1+f.rand.Intn(3)),
		Genres:           f.pick(models.Genres, 1+f.rand.Intn(4)),
		Experience:       seedLevels[f.rand.Intn(len(seedLevels))],
		Location:         seedCities[f.rand.Intn(len(seedCities))],
		AvatarURL:        fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		ProfileCompleted: true,
	}

	// realistic signup spread
	daysBack := f.rand.Intn(90)
	user.CreatedAt = time.Now().Add(-time.Duration(daysBack) * 24 * time.Hour)

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateBand persists a band over four existing users.
func (f *Factory) CreateBand(drummer, guitarist, bassist, singer *models.User, avgScore int) (*models.Band, error) {
	band := &models.Band{
		Name:          fmt.Sprintf("The %s Collective", gofakeit.HipsterWord()),
		DrummerID:     drummer.ID,
		GuitaristID:   guitarist.ID,
		BassistID:     bassist.ID,
		SingerID:      singer.ID,
		Status:        models.BandStatusActive,
		AvgScore:      avgScore,
		FormationDate: time.Now(),
	}
	if err := f.db.Create(band).Error; err != nil {
		return nil, err
	}
	return band, nil
}

// CreateMessage persists a chat message in a band.
func (f *Factory) CreateMessage(band *models.Band, user *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	msg := &models.Message{
		BandID:      band.ID,
		Content:     gofakeit.Sentence(8),
		MessageType: models.MessageTypeText,
	}
	if user != nil {
		msg.UserID = &user.ID
	} else {
		msg.MessageType = models.MessageTypeSystem
	}

	for _, override := range overrides {
		override(msg)
	}

	if err := f.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

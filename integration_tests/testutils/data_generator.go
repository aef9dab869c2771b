package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	assignmentdb "github.com/Black-And-White-Club/scout-bot/app/modules/assignment/infrastructure/repositories"
	notificationdb "github.com/Black-And-White-Club/scout-bot/app/modules/notification/infrastructure/repositories"
	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
)

// TestDataGenerator creates rows for integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator. A seed makes the output repeatable.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s))}
}

// GenerateEntry returns an entry for team in the given match with random scores.
func (g *TestDataGenerator) GenerateEntry(eventCode string, matchNumber, teamNumber int, alliance, organization string) *scoutingdb.Entry {
	f := g.faker
	now := time.Now().UTC()
	return &scoutingdb.Entry{
		ID:                   uuid.New(),
		EventCode:            eventCode,
		MatchNumber:          matchNumber,
		TeamNumber:           teamNumber,
		Alliance:             alliance,
		AutoCoralLevel1:      f.Number(0, 3),
		AutoCoralLevel2:      f.Number(0, 3),
		AutoCoralLevel3:      f.Number(0, 2),
		AutoCoralLevel4:      f.Number(0, 2),
		AutoAlgaeNet:         f.Number(0, 2),
		AutoAlgaeProcessor:   f.Number(0, 2),
		TeleopCoralLevel1:    f.Number(0, 8),
		TeleopCoralLevel2:    f.Number(0, 8),
		TeleopCoralLevel3:    f.Number(0, 6),
		TeleopCoralLevel4:    f.Number(0, 6),
		TeleopAlgaeNet:       f.Number(0, 5),
		TeleopAlgaeProcessor: f.Number(0, 5),
		ClimbType:            f.RandomString([]string{scoutingdb.ClimbNone, scoutingdb.ClimbPark, scoutingdb.ClimbShallow, scoutingdb.ClimbDeep}),
		ClimbSuccess:         f.Bool(),
		DefenseRating:        f.Number(1, 5),
		Notes:                f.Sentence(f.Number(2, 8)),
		ScouterID:            f.UUID(),
		ScouterOrganization:  organization,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// GenerateAssignment returns a pending assignment for team.
func (g *TestDataGenerator) GenerateAssignment(teamNumber int, due *time.Time, assignees ...string) *assignmentdb.Assignment {
	return &assignmentdb.Assignment{
		ID:          uuid.New(),
		TeamNumber:  teamNumber,
		Title:       g.faker.Sentence(3),
		Description: g.faker.Sentence(g.faker.Number(4, 10)),
		CreatedBy:   g.faker.UUID(),
		AssignedTo:  assignees,
		Status:      assignmentdb.StatusPending,
		DueDate:     due,
		CreatedAt:   time.Now().UTC(),
	}
}

// GenerateTarget returns a push target with a unique endpoint.
func (g *TestDataGenerator) GenerateTarget() notificationdb.PushTarget {
	return notificationdb.PushTarget{
		Endpoint: "https://push.example.com/" + g.faker.UUID(),
		Keys: notificationdb.PushKeys{
			P256dh: g.faker.LetterN(87),
			Auth:   g.faker.LetterN(22),
		},
	}
}

// GenerateSubscription returns a pending general subscription for user in team.
func (g *TestDataGenerator) GenerateSubscription(userID string, teamNumber int) *notificationdb.Subscription {
	now := time.Now().UTC()
	return &notificationdb.Subscription{
		ID:              uuid.New(),
		UserID:          userID,
		TeamNumber:      teamNumber,
		Target:          g.GenerateTarget(),
		ReminderMinutes: notificationdb.DefaultReminderMinutes,
		Status:          notificationdb.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

package rosca

import (
	"time"

	"github.com/mmynk/osusu/internal/models"
)

var (
	groupStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// sixty days after groupStart, i.e. two months elapsed
	testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func testEnv() Env {
	return Env{Now: testNow}
}

func member(id, name, phone string, role models.Role) models.Member {
	return models.Member{ID: id, Name: name, Phone: phone, Role: role}
}

// circle returns a full four-member group where only b has paid on time.
func circle(order models.PayoutOrder) models.Group {
	return models.Group{
		ID:                 "g1",
		Name:               "Makola Traders",
		ContributionAmount: 100,
		Frequency:          models.FrequencyMonthly,
		StartDate:          groupStart,
		PayoutOrder:        order,
		MaxMembers:         4,
		MembersList: []models.Member{
			member("a", "Abena", "+233555000001", models.RoleAdmin),
			member("b", "Bisi", "+233555000002", models.RoleMember),
			member("c", "Chidi", "+233555000003", models.RoleMember),
			member("d", "Dede", "+233555000004", models.RoleMember),
		},
		PaymentsLedger: []models.PaymentRecord{
			{ID: "p1", Amount: 200, PayerID: "b", ForMemberID: "a", Date: groupStart.AddDate(0, 0, 5), Provider: "MTN MoMo"},
		},
	}
}

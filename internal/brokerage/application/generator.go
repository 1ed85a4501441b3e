package application

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
)

// EntityGenerator produces synthetic entities for a load run. Identifier
// uniqueness is NOT a generator concern; the loader reserves candidates and
// asks for a fresh one on collision.
type EntityGenerator interface {
	Investor() *domain.Investor
	Account(investorID string) *domain.Account
	Ownership(accountID string) *domain.StockOwnership
}

var usernameDomains = []string{"gmail.com", "yahoo.com", "icloud.com", "hotmail.com", "outlook.com"}

var firstNames = []string{
	"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Charles", "Karen", "Daniel",
	"Nancy", "Matthew", "Lisa", "Anthony", "Betty", "Mark", "Margaret",
	"Donald", "Sandra", "Steven", "Ashley", "Paul", "Kimberly", "Andrew",
	"Emily", "Joshua", "Donna", "Kenneth", "Michelle",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark",
	"Ramirez", "Lewis", "Robinson", "Walker", "Young", "Allen", "King",
	"Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
}

// Generator is the pseudo-random entity source. Not safe for concurrent
// use; the loader generates on a single goroutine.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator seeds a generator. Seed zero means time-based.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed)), now: time.Now}
}

// Investor produces a synthetic investor with an email-like username.
func (g *Generator) Investor() *domain.Investor {
	first := firstNames[g.rng.Intn(len(firstNames))]
	last := lastNames[g.rng.Intn(len(lastNames))]
	mailDomain := usernameDomains[g.rng.Intn(len(usernameDomains))]

	return &domain.Investor{
		ID:       fmt.Sprintf("INV-%05d", g.rng.Intn(90000)+10000),
		Name:     first + " " + last,
		UID:      fmt.Sprintf("UID-%05d", g.rng.Intn(90000)+10000),
		Username: fmt.Sprintf("%s_%s@%s", strings.ToLower(first), strings.ToLower(last), mailDomain),
	}
}

// Account produces a synthetic account for the given investor with a
// balance in [1000, 10000) rounded to cents.
func (g *Generator) Account(investorID string) *domain.Account {
	balance := decimal.NewFromFloat(1000 + g.rng.Float64()*9000).Round(2)
	return &domain.Account{
		ID:                fmt.Sprintf("ACC-%04d", g.rng.Intn(9000)+1000),
		AccountNumber:     fmt.Sprintf("ACC-NO-%05d", g.rng.Intn(90000)+10000),
		Name:              "Account of " + investorID,
		Balance:           balance,
		BelongsToInvestor: investorID,
	}
}

// Ownership produces lots for a random subset of the stock catalog. Lot
// prices vary within ±5% of the catalog price.
func (g *Generator) Ownership(accountID string) *domain.StockOwnership {
	stocks := domain.Catalog()
	count := g.rng.Intn(len(stocks)) + 1

	lots := make([]domain.SecurityLot, 0, count)
	for _, idx := range g.rng.Perm(len(stocks))[:count] {
		stock := stocks[idx]
		variation := g.rng.Float64()*10 - 5
		factor := decimal.NewFromFloat(1 + variation/100)
		lots = append(lots, domain.SecurityLot{
			ID:           fmt.Sprintf("SEC-%05d", g.rng.Intn(90000)+10000),
			Ticker:       stock.Symbol,
			Price:        stock.Price.Mul(factor).Round(2),
			Quantity:     g.rng.Intn(100) + 1,
			AcquiredDate: g.now().Unix(),
		})
	}
	return &domain.StockOwnership{AccountID: accountID, Lots: lots}
}

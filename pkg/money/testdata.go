package money

import (
	"github.com/brianvoe/gofakeit/v6"
)

// TestDataGenerator produces realistic BRL amounts for tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(0)}
}

// NewTestDataGeneratorWithSeed creates a reproducible generator.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

// Amount returns a value between minCents and maxCents inclusive.
func (g *TestDataGenerator) Amount(minCents, maxCents int64) *Money {
	return New(int64(g.faker.IntRange(int(minCents), int(maxCents))))
}

// Stipend returns a plausible monthly stipend (R$ 1.000,00 to R$ 14.000,00).
func (g *TestDataGenerator) Stipend() *Money {
	return g.Amount(100_000, 1_400_000)
}

// AmountText returns an amount written the way spreadsheets carry it:
// "R$ 1.234,56", "1234,56" or "1234.56".
func (g *TestDataGenerator) AmountText() string {
	m := g.Amount(1, 1_000_000)
	switch g.faker.Number(0, 2) {
	case 0:
		return m.Display()
	case 1:
		return display.Format(m.Amount())
	default:
		return m.String()
	}
}

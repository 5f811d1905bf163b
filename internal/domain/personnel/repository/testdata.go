package repository

import (
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var fakeRanks = []string{
	"Capitão", "1º Tenente", "2º Tenente", "Subtenente",
	"1º Sargento", "2º Sargento", "3º Sargento",
	"Cabo Efetivo Profissional", "Soldado Efetivo Profissional", "Soldado Efetivo Variável",
}

var fakeBanks = []string{
	"001 - Banco do Brasil S.A", "341 - Itaú Unibanco S.A", "104 - Caixa Econômica Federal",
}

// TestDataGenerator produces plausible personnel records for tests.
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

// Record returns a complete record with unique-looking identifiers and no
// benefits.
func (g *TestDataGenerator) Record() Record {
	first := g.faker.FirstName()
	full := strings.ToUpper(first + " " + g.faker.LastName() + " " + g.faker.LastName())

	return Record{
		Rank:           g.faker.RandomString(fakeRanks),
		FullName:       full,
		WarName:        first,
		NationalID:     g.faker.Numerify("###########"),
		PrecedenceCode: g.faker.Numerify("#########"),
		MilitaryID:     g.faker.Numerify("##########"),
		Bank:           g.faker.RandomString(fakeBanks),
		Agency:         g.faker.Numerify("####"),
		Account:        g.faker.Numerify("#####-#"),
		FormationYear:  strconv.Itoa(g.faker.Number(1995, 2024)),
		BirthDate:      g.date(1970, 2005),
		EnlistmentDate: g.date(1990, 2024),
		Address:        g.faker.Street(),
		PostalCode:     g.faker.Numerify("########"),
		PreschoolFlag:  No,
		PreschoolValue: "0",
		TransportFlag:  No,
		TransportValue: "0",
		HousingFlag:    No,
	}
}

// Records returns n records.
func (g *TestDataGenerator) Records(n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = g.Record()
	}
	return out
}

func (g *TestDataGenerator) date(fromYear, toYear int) string {
	start := time.Date(fromYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(toYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	return g.faker.DateRange(start, end).Format("02/01/2006")
}

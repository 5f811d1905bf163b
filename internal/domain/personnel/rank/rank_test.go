package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

func TestOrder(t *testing.T) {
	assert.Equal(t, 0, Order("Capitão"))
	assert.Equal(t, 4, Order(" 1º Sargento "))
	assert.Equal(t, len(Hierarchy), Order("Major"))
	assert.Less(t, Order("Aspirante"), Order("Cabo Efetivo Profissional"))
}

func TestAbbreviations(t *testing.T) {
	tests := []struct {
		rank, upper, short string
	}{
		{"Capitão", "CAP", "Cap."},
		{"Subtenente", "ST", "Sub Ten."},
		{"Soldado Efetivo Variável", "SD EF VRV", "Sd EV"},
		{"Aspirante", "ASP", "Aspirante"},
		{"Major", "MAJOR", "Major"},
	}

	for _, tt := range tests {
		t.Run(tt.rank, func(t *testing.T) {
			assert.Equal(t, tt.upper, Upper(tt.rank))
			assert.Equal(t, tt.short, Short(tt.rank))
		})
	}
}

func TestSort(t *testing.T) {
	records := []repository.Record{
		{FullName: "ZECA", Rank: "Major"},
		{FullName: "BRUNO", Rank: "3º Sargento"},
		{FullName: "ANA", Rank: "3º Sargento"},
		{FullName: "CARLA", Rank: "Capitão"},
	}

	Sort(records)

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.FullName
	}
	assert.Equal(t, []string{"CARLA", "ANA", "BRUNO", "ZECA"}, names)
}

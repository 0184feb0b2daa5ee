package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableRequestFallsThroughUnsetFields(t *testing.T) {
	cases := []struct {
		name string
		req  tableRequest
		want string
	}{
		{"primary", tableRequest{"phoneNumber": "555", "phone": "777"}, "555"},
		{"empty string", tableRequest{"phoneNumber": "", "phone": "777"}, "777"},
		{"zero", tableRequest{"phoneNumber": float64(0), "phone": "777"}, "777"},
		{"false", tableRequest{"phoneNumber": false, "phone_no": "888"}, "888"},
		{"null", tableRequest{"phoneNumber": nil, "phone": "777"}, "777"},
		{"number", tableRequest{"phone": float64(5550101)}, "5550101"},
		{"nothing usable", tableRequest{"phoneNumber": false, "phone": float64(0)}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.req.phone())
		})
	}
}

func TestTableRequestTableNumber(t *testing.T) {
	assert.Equal(t, "4", tableRequest{"tableNumber": float64(0), "table": float64(4)}.table())
	assert.Equal(t, "", tableRequest{"table_no": false}.table())
}

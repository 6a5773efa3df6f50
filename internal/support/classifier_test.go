package support

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want UserType
	}{
		{"explicit tenant", "I am a tenant in block B", UserTenant},
		{"explicit renter", "Renter here", UserTenant},
		{"explicit agent", "I'm an agent", UserAgent},
		{"explicit broker", "broker with 12 properties", UserAgent},
		{"explicit realtor", "Realtor question", UserAgent},
		{"tenant keywords", "I need maintenance repair", UserTenant},
		{"tenant keyword deposit", "when do I get my deposit back", UserTenant},
		{"agent keywords", "how is my commission calculated", UserAgent},
		{"agent keyword listing", "my listing is not visible", UserAgent},
		{"both sets", "commission on the deposit", UserUnknown},
		{"neither set", "hello there", UserUnknown},
		{"empty", "", UserUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassify_ExplicitBeatsKeywords(t *testing.T) {
	// "commission" alone would mean agent.
	assert.Equal(t, UserTenant, Classify("tenant asking about commission"))
}

func TestReclassify_Sticky(t *testing.T) {
	assert.Equal(t, UserTenant, Reclassify(UserUnknown, "I need maintenance repair"))
	assert.Equal(t, UserTenant, Reclassify(UserTenant, "how is my commission calculated"))
	assert.Equal(t, UserAgent, Reclassify(UserAgent, "hello there"))
	assert.Equal(t, UserUnknown, Reclassify("", "hello there"))
}

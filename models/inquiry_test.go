package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseInquiryStatus(t *testing.T) {
	st, ok := ParseInquiryStatus("REPLIED")
	assert.True(t, ok)
	assert.Equal(t, StatusReplied, st)

	_, ok = ParseInquiryStatus("replied")
	assert.False(t, ok, "status filter is case sensitive")

	_, ok = ParseInquiryStatus("")
	assert.False(t, ok)
}

func TestViewerClassFor(t *testing.T) {
	assert.Equal(t, ViewerBuyer, ViewerClassFor(RoleUser))
	assert.Equal(t, ViewerStaff, ViewerClassFor(RoleAgent))
	assert.Equal(t, ViewerStaff, ViewerClassFor(RoleAdmin))
}

func TestInquiryIsAssignedTo(t *testing.T) {
	agentID := uint(7)
	assert.True(t, (&Inquiry{AssignedAgentID: &agentID}).IsAssignedTo(7))
	assert.False(t, (&Inquiry{AssignedAgentID: &agentID}).IsAssignedTo(8))
	assert.False(t, (&Inquiry{}).IsAssignedTo(7), "unassigned inquiries match no agent")
}

func TestInquiryHasUnread(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	before := base.Add(-time.Minute)
	after := base.Add(time.Minute)

	tests := []struct {
		name      string
		watermark *time.Time
		want      bool
	}{
		{"nil watermark", nil, true},
		{"watermark before last message", &before, true},
		{"watermark equal to last message", &base, false},
		{"watermark after last message", &after, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buyerSide := Inquiry{LastMessageAt: base, LastReadAtUser: tt.watermark}
			assert.Equal(t, tt.want, buyerSide.HasUnread(ViewerBuyer))

			staffSide := Inquiry{LastMessageAt: base, LastReadAtStaff: tt.watermark}
			assert.Equal(t, tt.want, staffSide.HasUnread(ViewerStaff))
		})
	}
}

func TestInquiryWatermarksAreIndependent(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inq := Inquiry{LastMessageAt: base, LastReadAtUser: &base}

	assert.False(t, inq.HasUnread(ViewerBuyer))
	assert.True(t, inq.HasUnread(ViewerStaff), "staff have not read anything yet")
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "agents", Agent{}.TableName())
	assert.Equal(t, "properties", Property{}.TableName())
	assert.Equal(t, "inquiries", Inquiry{}.TableName())
	assert.Equal(t, "inquiry_messages", InquiryMessage{}.TableName())
}

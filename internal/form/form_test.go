package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/model"
)

func vn(t *testing.T) datekey.Zone {
	t.Helper()
	z, err := datekey.NewZone("Asia/Ho_Chi_Minh")
	require.NoError(t, err)
	return z
}

func TestClearingStartClearsDependents(t *testing.T) {
	f := EventFields{Name: "x", Start: "2024-06-10T09:00", End: "2024-06-10T10:00", Reminder: "15"}
	require.True(t, f.DependentsEnabled())

	f.SetStart("")
	assert.Equal(t, "", f.End)
	assert.Equal(t, "", f.Reminder)
	assert.False(t, f.DependentsEnabled())

	f.SetStart("2024-06-11T08:00")
	assert.True(t, f.DependentsEnabled())
}

func TestForDate(t *testing.T) {
	assert.Equal(t, "2024-06-10T09:00", ForDate("2024-06-10").Start)
	assert.Equal(t, "", ForDate("").Start)
}

func TestFromEvent(t *testing.T) {
	z := vn(t)
	ev := model.Event{
		ID:           3,
		UserID:       9,
		Name:         "Dentist",
		StartTime:    "2024-06-10 09:00:00",
		EndTime:      model.StringPtr("2024-06-10 10:00:00"),
		Location:     model.StringPtr("Clinic"),
		TimeReminder: model.IntPtr(30),
	}
	f := FromEvent(ev, z)
	assert.Equal(t, EventFields{
		Name:     "Dentist",
		Start:    "2024-06-10T09:00",
		End:      "2024-06-10T10:00",
		Location: "Clinic",
		Reminder: "30",
	}, f)
}

func TestPayload(t *testing.T) {
	z := vn(t)
	f := EventFields{
		Name:     " Standup ",
		Start:    "2024-06-10T09:00",
		End:      "2024-06-10T09:30",
		Location: "",
		Reminder: "10",
	}
	p, err := f.Payload(z, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, "Standup", p.Name)
	assert.Equal(t, "2024-06-10 09:00:00", p.StartTime)
	require.NotNil(t, p.EndTime)
	assert.Equal(t, "2024-06-10 09:30:00", *p.EndTime)
	assert.Nil(t, p.Location)
	require.NotNil(t, p.TimeReminder)
	assert.Equal(t, 10, *p.TimeReminder)
}

func TestPayloadValidation(t *testing.T) {
	z := vn(t)
	tests := []struct {
		name   string
		fields EventFields
		field  string
		target error
	}{
		{"missing name", EventFields{Start: "2024-06-10T09:00"}, "name", nil},
		{"missing start", EventFields{Name: "x"}, "start time", nil},
		{"bad start", EventFields{Name: "x", Start: "tomorrow"}, "start time", nil},
		{"negative reminder", EventFields{Name: "x", Start: "2024-06-10T09:00", Reminder: "-5"}, "reminder", nil},
		{"fractional reminder", EventFields{Name: "x", Start: "2024-06-10T09:00", Reminder: "1.5"}, "reminder", nil},
		{"end before start", EventFields{Name: "x", Start: "2024-06-10T09:00", End: "2024-06-10T08:00"}, "", ErrEndBeforeStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fields.Payload(z, 1)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
				return
			}
			var fe *FieldError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestPayloadIgnoresDependentsWithoutStart(t *testing.T) {
	z := vn(t)
	f := EventFields{Name: "x", End: "garbage", Reminder: "abc"}
	_, err := f.Payload(z, 1)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "start time", fe.Field, "start is reported, not the cleared dependents")
}

func TestPayloadZeroReminder(t *testing.T) {
	p, err := EventFields{Name: "x", Start: "2024-06-10T09:00", Reminder: "0"}.Payload(vn(t), 1)
	require.NoError(t, err)
	require.NotNil(t, p.TimeReminder)
	assert.Equal(t, 0, *p.TimeReminder)
}

func TestRegisterValidate(t *testing.T) {
	ok := RegisterFields{Username: "an", Email: "an@example.com", Password: "pw", Confirm: "pw"}
	assert.NoError(t, ok.Validate())

	mismatch := ok
	mismatch.Confirm = "other"
	assert.ErrorIs(t, mismatch.Validate(), ErrPasswordMismatch)

	badEmail := ok
	badEmail.Email = "not-an-email"
	var fe *FieldError
	require.True(t, errors.As(badEmail.Validate(), &fe))
	assert.Equal(t, "e-mail", fe.Field)
	assert.Contains(t, fe.Error(), "valid e-mail")

	missing := RegisterFields{}
	require.True(t, errors.As(missing.Validate(), &fe))
	assert.Equal(t, "username", fe.Field)

	req, err := ok.Request()
	require.NoError(t, err)
	assert.Equal(t, model.RegisterRequest{Username: "an", Email: "an@example.com", Password: "pw"}, req)
}

func TestLoginAndVerify(t *testing.T) {
	_, err := LoginFields{Username: " ", Password: "x"}.Request()
	assert.Error(t, err)

	req, err := LoginFields{Username: " an ", Password: "x"}.Request()
	require.NoError(t, err)
	assert.Equal(t, "an", req.Username)

	_, err = VerifyFields{Email: "an@example.com"}.Request()
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "code", fe.Field)
}

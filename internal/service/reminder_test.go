package service

import (
	"testing"
	"time"

	"github.com/martijnhiemstra/selfsuffient/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTaskDueOn_OneOff(t *testing.T) {
	task := models.Task{TaskDatetime: "2025-05-14T09:00:00Z"}
	if !TaskDueOn(task, day("2025-05-14")) {
		t.Error("one-off task is due on its own day")
	}
	if TaskDueOn(task, day("2025-05-15")) {
		t.Error("one-off task is not due any other day")
	}
}

func TestTaskDueOn_Daily(t *testing.T) {
	task := models.Task{TaskDatetime: "2025-05-01T08:00:00Z", Recurrence: "daily"}
	if !TaskDueOn(task, day("2025-05-01")) || !TaskDueOn(task, day("2025-06-20")) {
		t.Error("daily task is due every day from its start")
	}
	if TaskDueOn(task, day("2025-04-30")) {
		t.Error("no occurrence before the start date")
	}
}

func TestTaskDueOn_Weekly(t *testing.T) {
	// 2025-05-05 is a Monday.
	task := models.Task{TaskDatetime: "2025-05-05T10:00:00Z", Recurrence: "weekly"}
	if !TaskDueOn(task, day("2025-05-12")) {
		t.Error("weekly task recurs on the same weekday")
	}
	if TaskDueOn(task, day("2025-05-13")) {
		t.Error("weekly task is not due on other weekdays")
	}
}

func TestTaskDueOn_Monthly(t *testing.T) {
	task := models.Task{TaskDatetime: "2025-01-15T00:00:00Z", Recurrence: "monthly"}
	if !TaskDueOn(task, day("2025-03-15")) {
		t.Error("monthly task recurs on the same day of month")
	}
	if TaskDueOn(task, day("2025-03-16")) {
		t.Error("monthly task is not due on other days")
	}
}

func TestTaskDueOn_Yearly(t *testing.T) {
	task := models.Task{TaskDatetime: "2024-07-01T00:00:00Z", Recurrence: "yearly"}
	if !TaskDueOn(task, day("2026-07-01")) {
		t.Error("yearly task recurs on the same month and day")
	}
	if TaskDueOn(task, day("2026-07-02")) {
		t.Error("yearly task is not due on other days")
	}
}

func TestTaskDueOn_DateOnlyValue(t *testing.T) {
	task := models.Task{TaskDatetime: "2025-05-14"}
	if !TaskDueOn(task, day("2025-05-14")) {
		t.Error("date-only task datetimes are accepted")
	}
}

func TestTaskDueOn_Unparseable(t *testing.T) {
	task := models.Task{TaskDatetime: "garbage"}
	if TaskDueOn(task, day("2025-05-14")) {
		t.Error("unparseable datetimes are never due")
	}
}

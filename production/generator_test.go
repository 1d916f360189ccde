package production

import (
	"testing"
	"time"

	"github.com/nekkaida/Cardose-sub003/model"
)

func testOrder() *model.Order {
	return &model.Order{
		ID:        "ord_1",
		BoxType:   "corrugated",
		Status:    "approved",
		Quantity:  500,
		Materials: []string{"corrugated_board", "water_ink"},
	}
}

func testInventory() []model.InventoryItem {
	return []model.InventoryItem{
		{ID: "inv_1", Name: "B-flute board", Material: "corrugated_board", Quantity: 900, Unit: "sheet"},
		{ID: "inv_2", Name: "Water-based ink", Material: "water_ink", Quantity: 40, Unit: "litre"},
		{ID: "inv_3", Name: "Greyboard 2mm", Material: "greyboard", Quantity: 120, Unit: "sheet"},
	}
}

func TestTemplateFallback(t *testing.T) {
	if got := TemplateFor("corrugated"); got.BoxType != "corrugated" {
		t.Errorf("TemplateFor(corrugated) = %s", got.BoxType)
	}
	if got := TemplateFor("hexagonal"); got.BoxType != "custom" {
		t.Errorf("unknown box type should fall back to custom, got %s", got.BoxType)
	}
}

func TestBuildTasksStages(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	tpl := TemplateFor("corrugated")
	tasks := BuildTasks(testOrder(), tpl, testInventory(), now)

	if len(tasks) != len(tpl.Stages) {
		t.Fatalf("tasks = %d, want %d", len(tasks), len(tpl.Stages))
	}
	for i, task := range tasks {
		if task.Stage != tpl.Stages[i].Stage {
			t.Errorf("task %d stage = %s, want %s", i, task.Stage, tpl.Stages[i].Stage)
		}
		if task.OrderID != "ord_1" {
			t.Errorf("task %d order = %s", i, task.OrderID)
		}
		if task.Status != model.TaskPending {
			t.Errorf("task %d status = %s", i, task.Status)
		}
		if !model.HasPrefix(task.ID, model.PrefixProduction) {
			t.Errorf("task %d id = %s", i, task.ID)
		}
	}
}

func TestBuildTasksDueDates(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	order := testOrder()
	order.Workflow.PlannedStart = "2026-03-09T08:00:00Z"
	tpl := TemplateFor("corrugated")

	tasks := BuildTasks(order, tpl, nil, now)

	// Running clock starts at planned start and accumulates each
	// stage's estimated hours.
	clock := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	for i, task := range tasks {
		clock = clock.Add(time.Duration(tpl.Stages[i].EstimatedHours * float64(time.Hour)))
		want := clock.Format(time.RFC3339)
		if task.DueDate != want {
			t.Errorf("task %s due = %s, want %s", task.Stage, task.DueDate, want)
		}
	}
}

func TestBuildTasksDependencies(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	tasks := BuildTasks(testOrder(), TemplateFor("corrugated"), nil, now)

	byStage := make(map[string]model.ProductionTask)
	for _, task := range tasks {
		byStage[task.Stage] = task
	}

	if deps := byStage[StageDesign].DependsOn; len(deps) != 0 {
		t.Errorf("design deps = %v, want none", deps)
	}
	if deps := byStage[StageCutting].DependsOn; len(deps) != 1 || deps[0] != byStage[StageMaterialPrep].ID {
		t.Errorf("cutting deps = %v, want [%s]", deps, byStage[StageMaterialPrep].ID)
	}
	// Corrugated includes printing, so assembly depends on both
	// cutting and printing.
	asmDeps := byStage[StageAssembly].DependsOn
	if len(asmDeps) != 2 {
		t.Fatalf("assembly deps = %v", asmDeps)
	}
	if asmDeps[0] != byStage[StageCutting].ID || asmDeps[1] != byStage[StagePrinting].ID {
		t.Errorf("assembly deps = %v", asmDeps)
	}
	// Corrugated skips finishing, so quality_check depends on
	// assembly alone.
	qcDeps := byStage[StageQualityCheck].DependsOn
	if len(qcDeps) != 1 || qcDeps[0] != byStage[StageAssembly].ID {
		t.Errorf("quality_check deps = %v", qcDeps)
	}
}

func TestBuildTasksMaterials(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	order := testOrder()
	order.Materials = []string{"corrugated_board", "gold_foil"}
	tasks := BuildTasks(order, TemplateFor("corrugated"), testInventory(), now)

	var prep *model.ProductionTask
	for i := range tasks {
		if tasks[i].Stage == StageMaterialPrep {
			prep = &tasks[i]
		} else if len(tasks[i].Materials) != 0 {
			t.Errorf("stage %s should carry no materials", tasks[i].Stage)
		}
	}
	if prep == nil {
		t.Fatal("no material_preparation task")
	}
	if len(prep.Materials) != 2 {
		t.Fatalf("materials = %v", prep.Materials)
	}
	if prep.Materials[0].ItemID != "inv_1" || prep.Materials[0].Unit != "sheet" {
		t.Errorf("matched material = %+v", prep.Materials[0])
	}
	if prep.Materials[0].Quantity != 500 {
		t.Errorf("quantity = %v, want order quantity", prep.Materials[0].Quantity)
	}
	// Unstocked material still listed, with no item id.
	if prep.Materials[1].Name != "gold_foil" || prep.Materials[1].ItemID != "" {
		t.Errorf("unstocked material = %+v", prep.Materials[1])
	}
}

func TestBuildTasksPriority(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	// Planned start in the past makes early due dates overdue.
	order := testOrder()
	order.Workflow.PlannedStart = "2026-02-20T08:00:00Z"
	order.Workflow.Deadline = "2026-02-28T08:00:00Z"
	tasks := BuildTasks(order, TemplateFor("corrugated"), nil, now)
	for _, task := range tasks {
		if task.Priority != model.PriorityUrgent {
			t.Errorf("overdue order: %s priority = %s, want urgent", task.Stage, task.Priority)
		}
	}

	// A deadline within two days escalates everything to high even if
	// the task's own due date is further out.
	order = testOrder()
	order.Workflow.Deadline = now.Add(40 * time.Hour).Format(time.RFC3339)
	tasks = BuildTasks(order, TemplateFor("corrugated"), nil, now)
	for _, task := range tasks {
		if task.Priority != model.PriorityHigh {
			t.Errorf("close deadline: %s priority = %s, want high", task.Stage, task.Priority)
		}
	}

	// No deadline at all: early tasks are due within hours (high or
	// normal), and nothing is urgent.
	order = testOrder()
	tasks = BuildTasks(order, TemplateFor("corrugated"), nil, now)
	if tasks[0].Priority != model.PriorityHigh {
		t.Errorf("first task priority = %s, want high (due within a day)", tasks[0].Priority)
	}
	for _, task := range tasks {
		if task.Priority == model.PriorityUrgent {
			t.Errorf("%s should not be urgent without an overdue date", task.Stage)
		}
	}
}

func TestBuildTasksQualityChecks(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	tasks := BuildTasks(testOrder(), TemplateFor("corrugated"), nil, now)

	for _, task := range tasks {
		if task.Stage != StageQualityCheck {
			continue
		}
		if len(task.QualityChecks) != 3 {
			t.Fatalf("quality checks = %v", task.QualityChecks)
		}
		for _, qc := range task.QualityChecks {
			if qc.Passed || qc.CheckedAt != "" {
				t.Errorf("check %s should start unpassed", qc.Name)
			}
		}
	}
}

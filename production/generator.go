package production

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nekkaida/Cardose-sub003/model"
	"github.com/nekkaida/Cardose-sub003/service"
	"github.com/nekkaida/Cardose-sub003/store"
)

// Generator expands an order into its production task sequence.
type Generator struct {
	orders    *service.OrderService
	inventory *service.InventoryService
	tasks     *service.ProductionService
	emitter   service.Emitter
}

func NewGenerator(orders *service.OrderService, inventory *service.InventoryService, tasks *service.ProductionService, emitter service.Emitter) *Generator {
	if emitter == nil {
		emitter = service.NopEmitter{}
	}
	return &Generator{orders: orders, inventory: inventory, tasks: tasks, emitter: emitter}
}

// GenerateForOrder builds and persists the task sequence for an order
// from its box type template. Repeated calls for the same order are
// rejected once tasks exist.
func (g *Generator) GenerateForOrder(ctx context.Context, orderID string) ([]model.ProductionTask, error) {
	order, _, err := g.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	existing, _, err := g.tasks.GetAll(ctx, store.ProductionFilter{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("order %s already has %d production tasks", orderID, len(existing))
	}

	items, origin, err := g.inventory.GetAll(ctx, store.InventoryFilter{})
	if err != nil {
		return nil, err
	}
	if origin == service.OriginCached {
		log.Printf("production: generating for %s from cached inventory", orderID)
	}

	tasks := BuildTasks(order, TemplateFor(order.BoxType), items, time.Now().UTC())

	created := make([]model.ProductionTask, 0, len(tasks))
	for _, t := range tasks {
		saved, err := g.tasks.Create(ctx, t)
		if err != nil {
			return created, fmt.Errorf("create task %s for %s: %w", t.Stage, orderID, err)
		}
		created = append(created, *saved)
	}

	g.emitter.Publish("production.tasks_generated", map[string]any{
		"order_id": orderID,
		"box_type": order.BoxType,
		"tasks":    len(created),
	})
	return created, nil
}

// BuildTasks is the pure expansion: given an order, a template and an
// inventory snapshot it returns the tasks with due dates, dependencies,
// priorities and material requirements filled in. Nothing is persisted.
func BuildTasks(order *model.Order, tpl Template, inventory []model.InventoryItem, now time.Time) []model.ProductionTask {
	start := parseTimeOr(order.Workflow.PlannedStart, now)
	deadline, hasDeadline := parseTime(order.Workflow.Deadline)

	materials := resolveMaterials(order, inventory)

	byStage := make(map[string]string, len(tpl.Stages))
	tasks := make([]model.ProductionTask, 0, len(tpl.Stages))
	clock := start
	for i, st := range tpl.Stages {
		clock = clock.Add(time.Duration(st.EstimatedHours * float64(time.Hour)))

		t := model.ProductionTask{
			ID:             model.NewID(model.PrefixProduction),
			OrderID:        order.ID,
			Stage:          st.Stage,
			Status:         model.TaskPending,
			EstimatedHours: st.EstimatedHours,
			DueDate:        clock.Format(time.RFC3339),
			DependsOn:      []string{},
			QualityChecks:  []model.QualityCheck{},
			Materials:      []model.RequiredMaterial{},
		}
		for _, dep := range stageDependencies[st.Stage] {
			if id, ok := byStage[dep]; ok {
				t.DependsOn = append(t.DependsOn, id)
			}
		}
		for _, name := range st.Checks {
			t.QualityChecks = append(t.QualityChecks, model.QualityCheck{Name: name})
		}
		// Materials are consumed by the first stage after design.
		if len(materials) > 0 && i == firstConsumingStage(tpl) {
			t.Materials = materials
		}
		t.Priority = priorityFor(now, clock, deadline, hasDeadline)

		byStage[st.Stage] = t.ID
		tasks = append(tasks, t)
	}
	return tasks
}

// priorityFor grades a task by how close its own due date and the
// order's deadline are.
func priorityFor(now, due time.Time, deadline time.Time, hasDeadline bool) string {
	if due.Before(now) || (hasDeadline && deadline.Before(now)) {
		return model.PriorityUrgent
	}
	taskSlack := due.Sub(now)
	orderSlack := time.Duration(1<<62 - 1)
	if hasDeadline {
		orderSlack = deadline.Sub(now)
	}
	switch {
	case taskSlack <= 24*time.Hour || orderSlack <= 48*time.Hour:
		return model.PriorityHigh
	case taskSlack <= 72*time.Hour || orderSlack <= 7*24*time.Hour:
		return model.PriorityNormal
	default:
		return model.PriorityLow
	}
}

// resolveMaterials matches the order's material list against the
// inventory snapshot. Materials with no matching stock item are still
// listed, with an empty item id, so the shop floor sees the shortfall.
func resolveMaterials(order *model.Order, inventory []model.InventoryItem) []model.RequiredMaterial {
	byMaterial := make(map[string]*model.InventoryItem, len(inventory))
	for i := range inventory {
		it := &inventory[i]
		if _, ok := byMaterial[it.Material]; !ok {
			byMaterial[it.Material] = it
		}
	}

	out := make([]model.RequiredMaterial, 0, len(order.Materials))
	for _, m := range order.Materials {
		rm := model.RequiredMaterial{Name: m, Quantity: float64(order.Quantity)}
		if it, ok := byMaterial[m]; ok {
			rm.ItemID = it.ID
			rm.Unit = it.Unit
		}
		out = append(out, rm)
	}
	return out
}

func firstConsumingStage(tpl Template) int {
	for i, st := range tpl.Stages {
		if st.Stage != StageDesign {
			return i
		}
	}
	return 0
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseTimeOr(s string, fallback time.Time) time.Time {
	if t, ok := parseTime(s); ok {
		return t
	}
	return fallback
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parcelpilot/courier-go-sdk/core"
	"github.com/parcelpilot/courier-go-sdk/courier"
)

// courierToolSpec pairs an action with its model-facing contract.
type courierToolSpec struct {
	action      courier.Action
	description string
	schema      map[string]interface{}
}

func courierToolSpecs(hasFireEscape bool) []courierToolSpec {
	specs := []courierToolSpec{
		{
			action:      courier.GoUp,
			description: "Take the elevator one floor up. The elevator always lands in the middle hallway.",
			schema:      WithThought(ObjectSchema(map[string]interface{}{})),
		},
		{
			action:      courier.GoDown,
			description: "Take the elevator one floor down. The elevator always lands in the middle hallway.",
			schema:      WithThought(ObjectSchema(map[string]interface{}{})),
		},
		{
			action:      courier.GoToFront,
			description: "Walk to the business at the front of your current floor.",
			schema:      WithThought(ObjectSchema(map[string]interface{}{})),
		},
		{
			action:      courier.GoToBack,
			description: "Walk to the business at the back of your current floor.",
			schema:      WithThought(ObjectSchema(map[string]interface{}{})),
		},
		{
			action:      courier.CheckCurrentLocation,
			description: "Check which floor and side you are on, and which business is there.",
			schema:      WithThought(ObjectSchema(map[string]interface{}{})),
		},
		{
			action:      courier.GetEmployeeList,
			description: "List the employees at the business you are currently standing outside of. Does not work from the middle hallway.",
			schema:      WithThought(ObjectSchema(map[string]interface{}{})),
		},
		{
			action:      courier.DeliverPackage,
			description: "Hand the package to the named recipient at your current location. The recipient must work at the business you are standing at.",
			schema: WithThought(ObjectSchema(map[string]interface{}{
				"recipient_name": StringProperty("Full name of the person to hand the package to, exactly as on the label."),
			}, "recipient_name")),
		},
	}
	if hasFireEscape {
		specs = append(specs, courierToolSpec{
			action:      courier.UseFireEscape,
			description: "Take the fire escape shortcut. Only works from its two fixed access points.",
			schema:      WithThought(ObjectSchema(map[string]interface{}{})),
		})
	}
	return specs
}

// CourierTools binds the building's tool set to the given toolbox. The
// fire escape tool is only exposed when the building actually has one.
func CourierTools(tb *courier.Toolbox) []core.Tool {
	hasFireEscape := len(tb.Building().FireEscapePositions()) > 0
	specs := courierToolSpecs(hasFireEscape)

	out := make([]core.Tool, 0, len(specs))
	for _, spec := range specs {
		spec := spec
		out = append(out, New(spec.action.String()).
			Description(spec.description).
			Schema(spec.schema).
			Handler(func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
				var args struct {
					core.BaseInput
					RecipientName string `json:"recipient_name"`
				}
				if len(params.Input) > 0 {
					if err := json.Unmarshal(params.Input, &args); err != nil {
						return nil, fmt.Errorf("decode %s input: %w", spec.action, err)
					}
				}
				text, err := tb.Invoke(spec.action, map[string]string{
					"recipient_name": args.RecipientName,
				})
				if err != nil {
					return nil, err
				}
				rec, ok := tb.LastRecord()
				return &core.ToolResult{Success: ok && rec.Success, Text: text}, nil
			}).
			Build())
	}
	return out
}

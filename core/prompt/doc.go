// Package prompt builds the system prompt handed to an upstream text
// generator when asking for a scene plan. The prompt embeds the JSON schema
// generated from the canonical scene types plus the caller's constraints, so
// the model is steered toward output the normalize package can accept on the
// strict path — the repair ladder remains the safety net, not the plan.
package prompt

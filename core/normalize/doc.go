// Package normalize turns untrusted free-form text — typically raw LLM
// output — into a schema-valid [scene.ScenePlan]. Because upstream text
// generators return JSON embedded in prose, wrapped in markdown fences,
// truncated mid-structure, or with the wrong field names and types, the
// package applies a layered recovery strategy before giving up:
//
//  1. extraction — isolate the most plausible JSON span in the text
//  2. tolerant parsing — strict parse, then a fixed ladder of syntactic repairs
//  3. coercion — map alias keys, stringified numbers and lone objects onto the
//     canonical schema, filling documented defaults
//  4. validation — accumulate every structural and semantic violation
//  5. reconciliation — rescale or reject the plan against the caller's
//     generation constraints
//  6. building — assemble the immutable plan and its summary
//
// The main entry point is [Normalize]. It is a pure, synchronous function of
// its inputs: no I/O, no shared state, safe to call concurrently.
//
// Failures carry a stage-specific kind and are matchable with [errors.Is]
// against the package sentinels (for example [ErrParseFailed]); the full
// detail — field path, rule violations, attempted repairs — is available via
// [AsError].
package normalize

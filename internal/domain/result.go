package domain

import "fmt"

type AttemptResult struct {
	Success bool
	Message string
}

// OperationResult aggregates one operation invocation. Single-shot operations
// fill one attempt; repeat-mode and point operations fill one per sub-request.
type OperationResult struct {
	Success      bool
	Message      string
	Total        int
	SuccessCount int
	AllSuccess   bool
	Attempts     []AttemptResult
}

func SingleResult(success bool, message string) OperationResult {
	count := 0
	if success {
		count = 1
	}

	return OperationResult{
		Success:      success,
		Message:      message,
		Total:        1,
		SuccessCount: count,
		AllSuccess:   success,
		Attempts:     []AttemptResult{{Success: success, Message: message}},
	}
}

// Aggregate builds the batch view over per-attempt results: success means any
// attempt succeeded, AllSuccess that every one did.
func Aggregate(attempts []AttemptResult) OperationResult {
	count := 0
	for _, attempt := range attempts {
		if attempt.Success {
			count++
		}
	}

	return OperationResult{
		Success:      count > 0,
		Message:      fmt.Sprintf("%d/%d succeeded", count, len(attempts)),
		Total:        len(attempts),
		SuccessCount: count,
		AllSuccess:   count == len(attempts),
		Attempts:     attempts,
	}
}

func FailedResult(message string) OperationResult {
	return OperationResult{
		Success:  false,
		Message:  message,
		Attempts: []AttemptResult{{Success: false, Message: message}},
	}
}

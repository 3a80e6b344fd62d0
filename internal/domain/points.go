package domain

import "fmt"

type PointsKind string

const (
	PointsGrant  PointsKind = "grant_points"
	PointsDeduct PointsKind = "deduct_points"
)

func (k PointsKind) Name() string {
	switch k {
	case PointsGrant:
		return "Grant points"
	case PointsDeduct:
		return "Deduct points"
	default:
		return string(k)
	}
}

// Body builds the administrative payload for one sub-request. The two
// endpoints take entirely different shapes; the field names and static values
// are exactly what the admin API requires.
func (k PointsKind) Body(aid string, points int) (map[string]any, error) {
	switch k {
	case PointsGrant:
		return map[string]any{
			"title": "Bonus Points Test",
			"type":  "13",
			"integralList": []map[string]any{
				{
					"userList": []string{aid},
					"integral": points,
				},
			},
			"isSend": 1,
		}, nil
	case PointsDeduct:
		return map[string]any{
			"userIds": []string{aid},
			"points":  fmt.Sprintf("%d", points),
			"remarks": "Points deduction",
			"reason":  "1",
			"content": "Suspected to be a spam.",
			"causeId": 1,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, k)
	}
}

// SplitPoints chunks a total into per-request amounts capped at maxPerRequest.
// A non-positive cap disables splitting.
func SplitPoints(total, maxPerRequest int) []int {
	if total <= 0 {
		return nil
	}
	if maxPerRequest <= 0 {
		return []int{total}
	}

	chunks := make([]int, 0, total/maxPerRequest+1)
	for remaining := total; remaining > 0; remaining -= maxPerRequest {
		chunk := remaining
		if chunk > maxPerRequest {
			chunk = maxPerRequest
		}
		chunks = append(chunks, chunk)
	}

	return chunks
}

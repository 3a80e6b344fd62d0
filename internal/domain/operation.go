package domain

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"time"
)

type OperationKey string
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// DefaultClientID is the hardcoded client identifier the remote API expects
// when the caller does not supply one.
const DefaultClientID = "5e972a68a408cada"

const (
	OpComplaintTopic    OperationKey = "complaint_topic"
	OpComplaintVideo    OperationKey = "complaint_video"
	OpLikeDiyVideo      OperationKey = "like_diy_video"
	OpLikePost          OperationKey = "like_post"
	OpCollectPlaylist   OperationKey = "collect_playlist"
	OpComplaintPlaylist OperationKey = "complaint_playlist"
	OpComplaintPost     OperationKey = "complaint_post"
	OpCreatePost        OperationKey = "create_post"
	OpCommentPost       OperationKey = "comment_post"
	OpFollowUser        OperationKey = "follow_user"
)

type Param struct {
	Name        string
	Label       string
	Placeholder string
}

// Definition fully describes one remote action. Definitions are data, not
// behavior: a single interpreter (BuildRequest plus the executor) turns them
// into HTTP calls.
type Definition struct {
	Key      OperationKey
	Name     string
	Method   Method
	Path     string
	Params   []Param
	Defaults map[string]string
	// Repeatable operations support an internal "repeat N times" loop keyed
	// off the count parameter.
	Repeatable bool
	// NeedsSelfAID marks operations whose payload embeds the caller's own
	// account identity, resolved through the whoami endpoint first.
	NeedsSelfAID bool
}

var registry = []Definition{
	{
		Key:    OpComplaintTopic,
		Name:   "Report topic",
		Method: MethodPost,
		Path:   "/bff-app/v1/community/circle/topic/complaint",
		Params: []Param{{Name: "target_id", Label: "Topic ID", Placeholder: "numeric topic id"}},
	},
	{
		Key:    OpComplaintVideo,
		Name:   "Report video",
		Method: MethodPost,
		Path:   "/appco/v1/complaints",
		Params: []Param{{Name: "target_id", Label: "Video ID", Placeholder: "numeric video id"}},
	},
	{
		Key:    OpLikeDiyVideo,
		Name:   "Like DIY video",
		Method: MethodPost,
		Path:   "/app/v1/diy-videos/collections",
		Params: []Param{{Name: "target_id", Label: "Video ID", Placeholder: "numeric video id"}},
	},
	{
		Key:    OpLikePost,
		Name:   "Like post",
		Method: MethodGet,
		Path:   "/bi/rest/v1/postings/spot",
		Params: []Param{{Name: "target_id", Label: "Post ID", Placeholder: "post id"}},
	},
	{
		Key:    OpCollectPlaylist,
		Name:   "Collect playlist",
		Method: MethodPost,
		Path:   "/bff-app/v1/pixel-screen/share-list/collect",
		Params: []Param{{Name: "target_id", Label: "Playlist ID", Placeholder: "numeric playlist id"}},
	},
	{
		Key:    OpComplaintPlaylist,
		Name:   "Report playlist",
		Method: MethodPost,
		Path:   "/bff-app/v1/pixel-screen/share-list/share/complaint",
		Params: []Param{{Name: "target_id", Label: "Playlist ID", Placeholder: "numeric playlist id"}},
	},
	{
		Key:    OpComplaintPost,
		Name:   "Report post",
		Method: MethodPost,
		Path:   "/appco/v1/complaints",
		Params: []Param{{Name: "target_id", Label: "Post ID", Placeholder: "numeric post id"}},
	},
	{
		Key:    OpCreatePost,
		Name:   "Create post",
		Method: MethodPost,
		Path:   "/bi/rest/v1/postings",
		Params: []Param{
			{Name: "content", Label: "Post content", Placeholder: "post body text"},
			{Name: "count", Label: "Post count", Placeholder: "number of posts"},
		},
		Defaults: map[string]string{
			"content": "This is an automatically published test content.",
			"count":   "1",
		},
		Repeatable: true,
	},
	{
		Key:    OpCommentPost,
		Name:   "Comment post",
		Method: MethodPost,
		Path:   "/bi/rest/v1/postings/comment",
		Params: []Param{
			{Name: "target_id", Label: "Post ID", Placeholder: "post id"},
			{Name: "content", Label: "Comment content", Placeholder: "comment text"},
			{Name: "count", Label: "Comment count", Placeholder: "number of comments"},
		},
		Defaults: map[string]string{
			"content": "This is the default comment content for testing",
			"count":   "1",
		},
		Repeatable: true,
	},
	{
		Key:    OpFollowUser,
		Name:   "Follow user",
		Method: MethodPost,
		Path:   "/bff-app/v1/community/user/follow",
		Params: []Param{{Name: "target_id", Label: "Target AID", Placeholder: "account id of the user to follow"}},
		// The follow payload embeds both the target's and the caller's
		// identity, so the caller's AID is resolved first.
		NeedsSelfAID: true,
	},
}

var registryByKey = func() map[OperationKey]Definition {
	m := make(map[OperationKey]Definition, len(registry))
	for _, def := range registry {
		m[def.Key] = def
	}
	return m
}()

// Lookup returns the definition for key, if registered.
func Lookup(key OperationKey) (Definition, bool) {
	def, ok := registryByKey[key]
	return def, ok
}

// Definitions returns all registered operations in registry order.
func Definitions() []Definition {
	result := make([]Definition, len(registry))
	copy(result, registry)
	return result
}

// MergeParams fills defaults for missing parameters and validates the result
// against the declared schema. Unknown or missing parameters fail here, before
// any network call is attempted.
func (d Definition) MergeParams(supplied map[string]string) (map[string]string, error) {
	declared := make(map[string]struct{}, len(d.Params))
	for _, param := range d.Params {
		declared[param.Name] = struct{}{}
	}

	merged := make(map[string]string, len(d.Params))
	for name, value := range supplied {
		if _, ok := declared[name]; !ok {
			return nil, fmt.Errorf("%w: %q not accepted by %s", ErrUnknownParameter, name, d.Key)
		}
		merged[name] = value
	}

	for _, param := range d.Params {
		if merged[param.Name] != "" {
			continue
		}
		fallback, ok := d.Defaults[param.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s requires %q", ErrMissingParameter, d.Key, param.Name)
		}
		merged[param.Name] = fallback
	}

	return merged, nil
}

// BuildContext carries request-shaping inputs that are not caller parameters.
type BuildContext struct {
	ClientID string
	SelfAID  string
	// Attempt is the zero-based loop index in repeat mode; it keeps generated
	// post titles unique so the remote API does not reject duplicates.
	Attempt int
	Now     time.Time
}

// BuildRequest interprets the definition into a concrete request shape for
// the merged parameter set. The field names and static constants are exactly
// what the remote API requires.
func (d Definition) BuildRequest(params map[string]string, bc BuildContext) (Request, error) {
	req := Request{Method: d.Method, Path: d.Path}
	clientID := bc.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}

	switch d.Key {
	case OpComplaintTopic:
		id, err := targetInt(params)
		if err != nil {
			return Request{}, err
		}
		req.Body = map[string]any{"communalId": id, "causeId": 1, "communalType": 12, "content": ""}
	case OpComplaintVideo:
		id, err := targetInt(params)
		if err != nil {
			return Request{}, err
		}
		req.Body = map[string]any{"content": "", "causeId": 1, "type": 2, "id": id}
	case OpLikeDiyVideo:
		id, err := targetInt(params)
		if err != nil {
			return Request{}, err
		}
		req.Body = map[string]any{"videoId": id}
	case OpLikePost:
		req.Query = url.Values{}
		req.Query.Set("client", clientID)
		req.Query.Set("type", "1")
		req.Query.Set("postId", params["target_id"])
	case OpCollectPlaylist:
		id, err := targetInt(params)
		if err != nil {
			return Request{}, err
		}
		req.Body = map[string]any{"id": id, "state": 1}
	case OpComplaintPlaylist:
		id, err := targetInt(params)
		if err != nil {
			return Request{}, err
		}
		req.Body = map[string]any{"causeId": 1, "communalId": id, "communalType": 5, "content": ""}
	case OpComplaintPost:
		id, err := targetInt(params)
		if err != nil {
			return Request{}, err
		}
		req.Body = map[string]any{"content": "", "causeId": 1, "type": 1, "id": id}
	case OpCreatePost:
		body, err := createPostBody(params["content"], bc)
		if err != nil {
			return Request{}, err
		}
		req.Body = body
	case OpCommentPost:
		id, err := targetInt(params)
		if err != nil {
			return Request{}, err
		}
		req.Body = map[string]any{"postId": id, "content": params["content"]}
	case OpFollowUser:
		if bc.SelfAID == "" {
			return Request{}, fmt.Errorf("follow_user requires the caller's aid")
		}
		req.Body = map[string]any{"aid": bc.SelfAID, "followAid": params["target_id"], "state": 1}
	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownOperation, d.Key)
	}

	return req, nil
}

func targetInt(params map[string]string) (int, error) {
	raw := params["target_id"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("target_id %q is not numeric", raw)
	}

	return id, nil
}

func createPostBody(content string, bc BuildContext) (map[string]any, error) {
	// contentV2 is a JSON document embedded as a string field, carrying both
	// the raw content and an HTML-escaped rendering of it.
	inner, err := json.Marshal(map[string]string{
		"content": content,
		"html":    html.EscapeString(content),
	})
	if err != nil {
		return nil, fmt.Errorf("encode contentV2: %w", err)
	}

	return map[string]any{
		"title":     PostTitle(bc.Now, bc.Attempt),
		"content":   content,
		"contentV2": string(inner),
	}, nil
}

// PostTitle derives a unique post title from a truncated current-time value
// plus the loop index, so repeated posts are not rejected for duplicate
// titles.
func PostTitle(now time.Time, attempt int) string {
	return fmt.Sprintf("Auto Post %d-%d", now.UnixMilli()%1_000_000_000, attempt+1)
}

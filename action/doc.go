// Package action performs Siren actions and feeds their results back into
// a store.Store.
//
// Perform encodes an action's fields, sends the request with the caller's
// credential, and, when the server answers with an entity that carries a
// self link, writes that entity into the store so listeners see the new
// state. Actions run one at a time through a queue.Queue unless the caller
// asks for immediate execution:
//
//	p, err := action.New(action.Config{Store: s, Transport: tr})
//	entity, err := p.Perform(ctx, order.Actions[0], cred, action.Options{
//		Fields: url.Values{"quantity": {"2"}},
//	})
//
// Form-encoded actions send their fields as the query string for GET and
// HEAD and as an application/x-www-form-urlencoded body otherwise. Actions
// whose type is application/json send a JSON object instead.
package action

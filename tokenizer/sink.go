package tokenizer

import "github.com/tagtree/htmlkit/token"

// Sink is the tree constructor's side of the "Emit contract" in spec.md
// §4.3: "the tokenizer synchronously calls the tree constructor's
// process_token. The constructor may change the tokenizer state ... before
// returning." ProcessToken is that synchronous callback; a Sink is also an
// ErrorSink via ReportError, matching spec.md §9's note that "CRTP-style
// host hooks ... map to callback interfaces".
//
// The design is push-based (the tokenizer drives, the sink reacts) rather
// than golang.org/x/net/html's pull-based Tokenizer.Next() loop, matching
// spec.md §4.3 literally and grounded on moznion-helium's SAX ContentHandler
// interface (sax/interface.go), which is the pack's own example of a
// push-style HTML/XML tokenizer-to-tree-builder contract.
type Sink interface {
	ProcessToken(tok *token.Token)
	ReportError(name string)
}

package pacer

// TokenDispenser limits the number of concurrent operations to the
// size of its pool.  Get blocks until a token is free, Put hands it
// back.  The Pacer uses one to cap in flight connections.
type TokenDispenser struct {
	tokens chan struct{}
}

// NewTokenDispenser makes a dispenser with n tokens available
func NewTokenDispenser(n int) *TokenDispenser {
	td := &TokenDispenser{
		tokens: make(chan struct{}, n),
	}
	for i := 0; i < n; i++ {
		td.tokens <- struct{}{}
	}
	return td
}

// Get a token, blocking until one is available.  Return it with Put.
func (td *TokenDispenser) Get() {
	<-td.tokens
}

// Put the token back
func (td *TokenDispenser) Put() {
	td.tokens <- struct{}{}
}

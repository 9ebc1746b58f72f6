package marshmallow

// DataHandler is a post-processing callback applied to the marshaled output
// before it is exposed. Handlers run in registration order; each returns the
// mapping that replaces the prior one, enabling root-wrapping or
// derived-field injection.
type DataHandler func(inst *Instance, data *Data, obj any) *Data

// ErrorHandler is invoked exactly once per marshal, only when the collected
// error mapping is non-empty. A non-nil return propagates to the Bind/Dump
// caller, turning collected errors into a caller-specific fault.
type ErrorHandler func(inst *Instance, errs ErrorMap, obj any) error

// OnData appends a data handler to the schema type. Registration is
// synchronized; instances observe the handlers present when they bind.
func (s *Schema) OnData(h DataHandler) *Schema {
	if h == nil {
		return s
	}
	s.mu.Lock()
	s.dataHandlers = append(s.dataHandlers, h)
	s.mu.Unlock()
	return s
}

// OnError replaces the schema type's error handler.
func (s *Schema) OnError(h ErrorHandler) *Schema {
	s.mu.Lock()
	s.errorHandler = h
	s.mu.Unlock()
	return s
}

func (s *Schema) hooks() ([]DataHandler, ErrorHandler) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	handlers := make([]DataHandler, len(s.dataHandlers))
	copy(handlers, s.dataHandlers)
	return handlers, s.errorHandler
}

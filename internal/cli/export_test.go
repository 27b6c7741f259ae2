package cli

// Debounce exposes the watch event batching to tests.
var Debounce = debounce

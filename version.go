package xmldoc

// Version is the library version reported by the bundled tools.
const Version = "0.1.0"

package g2

// Marker 目录名为 gg，包名为 g2
type Marker struct{}

package main

// Required by -buildmode=c-shared; the library has no entry point of its own.
func main() {}

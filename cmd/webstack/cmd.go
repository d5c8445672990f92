package main

import (
	"flag"
	"io"

	klog "k8s.io/klog/v2"
)

// quietKlog keeps client-go and helm klog output off the terminal.
func quietKlog() {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	_ = fs.Set("stderrthreshold", "FATAL")
	_ = fs.Set("v", "0")
	klog.LogToStderr(false)
	klog.SetOutput(io.Discard)
}

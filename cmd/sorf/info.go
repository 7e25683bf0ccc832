package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/urfave/cli/v3"
	xcpu "golang.org/x/sys/cpu"

	"github.com/samcharles93/sorf/internal/backend"
)

type simdFeature struct {
	name string
	ok   bool
}

func simdFeatures() []simdFeature {
	switch runtime.GOARCH {
	case "amd64", "386":
		return []simdFeature{
			{"SSE4.1", xcpu.X86.HasSSE41},
			{"AVX", xcpu.X86.HasAVX},
			{"AVX2", xcpu.X86.HasAVX2},
			{"FMA", xcpu.X86.HasFMA},
			{"AVX512F", xcpu.X86.HasAVX512F},
		}
	case "arm64":
		return []simdFeature{
			{"ASIMD", xcpu.ARM64.HasASIMD},
			{"FPHP", xcpu.ARM64.HasFPHP},
			{"SVE", xcpu.ARM64.HasSVE},
		}
	default:
		return nil
	}
}

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:   "info",
		Usage:  "Print host and backend information",
		Before: setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Printf("Backends:   %s\n", backend.Available())
			fmt.Printf("Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

			if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
				fmt.Printf("CPU:        %s\n", infos[0].ModelName)
			}
			physical, _ := cpu.CountsWithContext(ctx, false)
			logical, _ := cpu.CountsWithContext(ctx, true)
			fmt.Printf("Cores:      %d physical, %d logical\n", physical, logical)
			fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
			fmt.Printf("Threads:    %d per job\n", threads)

			if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
				fmt.Printf("Memory:     %.1f GB total, %.1f GB available\n",
					float64(vm.Total)/(1<<30), float64(vm.Available)/(1<<30))
			}

			if feats := simdFeatures(); len(feats) > 0 {
				fmt.Print("SIMD:      ")
				for _, f := range feats {
					mark := "-"
					if f.ok {
						mark = "+"
					}
					fmt.Printf(" %s%s", mark, f.name)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

package archive

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for archive events.
var (
	SignalProcessorCreated  = capitan.NewSignal("archive.processor.created", "Processor instantiated")
	SignalPlanCompiled      = capitan.NewSignal("archive.plan.compiled", "Type plans compiled and cached")
	SignalHandlerRegistered = capitan.NewSignal("archive.handler.registered", "External handler registered")
	SignalEncodeStart       = capitan.NewSignal("archive.encode.start", "Encode operation beginning")
	SignalEncodeComplete    = capitan.NewSignal("archive.encode.complete", "Encode operation finished")
	SignalDecodeStart       = capitan.NewSignal("archive.decode.start", "Decode operation beginning")
	SignalDecodeComplete    = capitan.NewSignal("archive.decode.complete", "Decode operation finished")
	SignalTranscodeComplete = capitan.NewSignal("archive.transcode.complete", "Transcode operation finished")
)

// Keys for typed event data.
var (
	KeyContentType = capitan.NewStringKey("content_type")
	KeyTargetType  = capitan.NewStringKey("target_type")
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyCategory    = capitan.NewStringKey("category")
	KeyStyle       = capitan.NewStringKey("style")
	KeyPlanCount   = capitan.NewIntKey("plan_count")
	KeySize        = capitan.NewIntKey("size")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitProcessorCreated emits an event when a processor is created.
func emitProcessorCreated(ctx context.Context, typeName, category string) {
	capitan.Emit(ctx, SignalProcessorCreated,
		KeyTypeName.Field(typeName),
		KeyCategory.Field(category),
	)
}

// emitPlanCompiled emits an event when a type tree is compiled.
func emitPlanCompiled(ctx context.Context, typeName, category string, count int) {
	capitan.Emit(ctx, SignalPlanCompiled,
		KeyTypeName.Field(typeName),
		KeyCategory.Field(category),
		KeyPlanCount.Field(count),
	)
}

func emitHandlerRegistered(ctx context.Context, typeName, style string) {
	capitan.Emit(ctx, SignalHandlerRegistered,
		KeyTypeName.Field(typeName),
		KeyStyle.Field(style),
	)
}

// emitEncodeStart emits an event when encode begins.
func emitEncodeStart(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalEncodeStart,
		KeyContentType.Field(ContentType),
		KeyTypeName.Field(typeName),
	)
}

// emitEncodeComplete emits an event when encode finishes.
func emitEncodeComplete(ctx context.Context, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(ContentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fields...)
	}
}

// emitDecodeStart emits an event when decode begins.
func emitDecodeStart(ctx context.Context, typeName string, size int) {
	capitan.Emit(ctx, SignalDecodeStart,
		KeyContentType.Field(ContentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
	)
}

// emitDecodeComplete emits an event when decode finishes.
func emitDecodeComplete(ctx context.Context, typeName string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(ContentType),
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fields...)
	}
}

// EmitTranscodeComplete emits an event when a payload has been converted
// between two content types. It is exported for the transcode package.
func EmitTranscodeComplete(ctx context.Context, from, to, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(from),
		KeyTargetType.Field(to),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalTranscodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalTranscodeComplete, fields...)
	}
}

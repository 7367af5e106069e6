// Package agent provides prebuilt nodes and graphs for conversational
// workloads on top of the graph, model and tool packages.
//
//   - NewChatNode turns a model.Model into a graph node that appends the
//     model's reply to the conversation.
//   - NewChatGraph wires START -> chatbot -> END.
//   - NewToolCallingGraph wires a chat node and a tool dispatch node behind
//     tool.Condition, either as a one-shot router (tools -> END) or as a
//     loop (tools -> llm) with WithLoop.
//
// Models and tool registries are always passed in explicitly; nodes hold no
// per-run state, so one compiled graph can serve concurrent runs.
package agent

package extraction

import "fmt"

const systemPrompt = "You are an expert post partum doula and data analyst. Your job is to help new parents track the health and wellbeing of newborns. " +
	"Your input is transcribed audio from parents describing an activity they did, such as feeding the baby, changing the baby's diaper, or pumping breast milk. " +
	"You will help them organize and summarize this information effectively by identifying key details and activities. " +
	"Your task is to extract the key activity details and format them into a JSON array based on the provided schema."

const returnInstructions = "Format your responses as objects in a JSON array. Each event should correspond to a single 'row' and adhere to the provided schema. " +
	"Some fields may be blank for each activity, that's ok. Ensure all field names and enum values match the schema exactly."

// BuildPrompt combines the fixed persona, the caregiver text and the output instructions.
func BuildPrompt(text string) string {
	return fmt.Sprintf("%s Transcribe the following baby activity: %q | %s", systemPrompt, text, returnInstructions)
}
